package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ToaaMusic/ai-main/internal/models"
)

const userColumns = `id, username, email, password_hash, phone, avatar, role, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Avatar,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser creates a new user in the database
func (db *DB) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	user, err := scanUser(db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, phone, role)
		VALUES ($1, $2, $3, $4, 'user')
		RETURNING `+userColumns,
		req.Username, strings.ToLower(req.Email), passwordHash, req.Phone,
	))
	if err != nil {
		if code, constraint := pgError(err); code == pgUniqueViolation {
			if constraint == "users_username_key" {
				return nil, ErrUsernameExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by their email
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

// GetUserPublic returns a user's public profile with listing counts.
func (db *DB) GetUserPublic(ctx context.Context, id int) (*models.UserPublic, error) {
	u := &models.UserPublic{}
	err := db.Pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.avatar, u.created_at,
			(SELECT COUNT(*) FROM products WHERE seller_id = u.id),
			(SELECT COUNT(*) FROM products WHERE seller_id = u.id AND status = 'sold')
		FROM users u
		WHERE u.id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Avatar, &u.CreatedAt, &u.ProductCount, &u.SoldCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns a page of users, newest first
func (db *DB) ListUsers(ctx context.Context, params *models.UserListParams) ([]*models.User, int, error) {
	where := ""
	var args []interface{}
	if params.Search != "" {
		where = "WHERE username ILIKE $1 OR email ILIKE $1"
		args = append(args, likePattern(params.Search))
	}

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// UpdateUserRole changes a user's role
func (db *DB) UpdateUserRole(ctx context.Context, id int, role models.Role) (*models.User, error) {
	return scanUser(db.Pool.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, role))
}
