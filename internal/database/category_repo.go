package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ToaaMusic/ai-main/internal/models"
)

const categoryColumns = `id, name, description, parent_id, created_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	c := &models.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (db *DB) queryCategories(ctx context.Context, sql string, args ...interface{}) ([]models.Category, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// ListCategories returns every category ordered by id.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	return db.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
}

// ListTopLevelCategories returns the roots, each with its children attached
// when withChildren is set.
func (db *DB) ListTopLevelCategories(ctx context.Context, withChildren bool) ([]models.Category, error) {
	if !withChildren {
		return db.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY id`)
	}

	all, err := db.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(all), nil
}

// ListChildCategories returns the direct children of parentID.
func (db *DB) ListChildCategories(ctx context.Context, parentID int) ([]models.Category, error) {
	return db.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY id`, parentID)
}

// BuildCategoryTree returns the top-level categories with their direct
// children attached. Input order is preserved.
func BuildCategoryTree(all []models.Category) []models.Category {
	children := make(map[int][]models.Category)
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	roots := []models.Category{}
	for _, c := range all {
		if c.ParentID == nil {
			c.Children = children[c.ID]
			if c.Children == nil {
				c.Children = []models.Category{}
			}
			roots = append(roots, c)
		}
	}
	return roots
}

func (db *DB) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	return scanCategory(db.Pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

// RootCategoryName returns the name of the top-level ancestor of id, which is
// the category the estimator prices against.
func (db *DB) RootCategoryName(ctx context.Context, id int) (string, error) {
	var name string
	err := db.Pool.QueryRow(ctx, `
		WITH RECURSIVE chain AS (
			SELECT id, name, parent_id FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, c.name, c.parent_id FROM categories c JOIN chain ON c.id = chain.parent_id
		)
		SELECT name FROM chain WHERE parent_id IS NULL LIMIT 1
	`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCategoryNotFound
		}
		return "", err
	}
	return name, nil
}

func (db *DB) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	c, err := scanCategory(db.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, description, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns, req.Name, req.Description, req.ParentID))
	if err != nil {
		if code, _ := pgError(err); code == pgForeignKeyViolation {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (db *DB) UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error) {
	return scanCategory(db.Pool.QueryRow(ctx, `
		UPDATE categories SET
			name = COALESCE($2, name),
			description = COALESCE($3, description)
		WHERE id = $1
		RETURNING `+categoryColumns, id, req.Name, req.Description))
}

// DeleteCategory removes a category that no product or sub-category references.
func (db *DB) DeleteCategory(ctx context.Context, id int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if code, _ := pgError(err); code == pgForeignKeyViolation {
			return ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
