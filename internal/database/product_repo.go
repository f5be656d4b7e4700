package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ToaaMusic/ai-main/internal/models"
	"github.com/ToaaMusic/ai-main/internal/pricing"
)

const productColumns = `
	p.id, p.title, p.description, p.brand, p.model, p.condition,
	p.original_price, p.ai_estimated_price, p.user_price, p.usage_duration,
	p.category_id, p.seller_id, p.status, p.images, p.created_at, p.updated_at,
	COALESCE(c.name, ''), COALESCE(u.username, '')`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN users u ON u.id = p.seller_id`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Brand, &p.Model, &p.Condition,
		&p.OriginalPrice, &p.AIEstimatedPrice, &p.UserPrice, &p.UsageDuration,
		&p.CategoryID, &p.SellerID, &p.Status, &p.Images, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.SellerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

// ProductEstimate is an estimator run to store with a product.
type ProductEstimate struct {
	Price   float64
	Factors models.PricingFactors
}

// EstimateFrom converts an estimator result into the stored form.
func EstimateFrom(res *pricing.Result) ProductEstimate {
	return ProductEstimate{
		Price: res.EstimatedPrice,
		Factors: models.PricingFactors{
			BrandValue:         res.Factors.BrandValue,
			MarketDemand:       res.Factors.MarketDemand,
			ConditionScore:     res.Factors.ConditionScore,
			UsageDuration:      res.Factors.UsageDuration,
			FunctionalityScore: res.Factors.FunctionalityScore,
			OverallScore:       res.Factors.OverallScore,
		},
	}
}

var productSortColumns = map[string]string{
	"createdAt": "p.created_at",
	"price":     "p.user_price",
}

// ListProducts returns a paginated list of products with optional filtering
func (db *DB) ListProducts(ctx context.Context, params *models.ProductListParams) ([]*models.Product, int, error) {
	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if params.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf(`p.category_id IN (
			WITH RECURSIVE tree AS (
				SELECT id FROM categories WHERE id = $%d
				UNION ALL
				SELECT c2.id FROM categories c2 JOIN tree ON c2.parent_id = tree.id
			)
			SELECT id FROM tree)`, argIndex))
		args = append(args, *params.CategoryID)
		argIndex++
	}

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d OR p.model ILIKE $%d OR p.search_text LIKE LOWER($%d))",
			argIndex, argIndex, argIndex, argIndex, argIndex,
		))
		args = append(args, likePattern(params.Search))
		argIndex++
	}

	if params.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.user_price >= $%d", argIndex))
		args = append(args, *params.MinPrice)
		argIndex++
	}

	if params.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.user_price <= $%d", argIndex))
		args = append(args, *params.MaxPrice)
		argIndex++
	}

	if params.Condition != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("p.condition = $%d", argIndex))
		args = append(args, params.Condition)
		argIndex++
	}

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, params.Status)
		argIndex++
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM products p "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, productFrom, whereClause,
		productOrderBy(params.SortBy, params.SortOrder),
		argIndex, argIndex+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}

	return products, total, rows.Err()
}

// productOrderBy maps the public sort parameters to an ORDER BY clause,
// defaulting to newest first.
func productOrderBy(sortBy, sortOrder string) string {
	column, ok := productSortColumns[sortBy]
	if !ok {
		column = productSortColumns["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, p.id %s", column, direction, direction)
}

// GetProductByID retrieves a product with its category and seller names
func (db *DB) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(db.Pool.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id))
}

// GetProductDetail loads a product with its latest pricing factors and reviews.
func (db *DB) GetProductDetail(ctx context.Context, id int) (*models.ProductDetail, error) {
	p, err := db.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	factors, err := db.GetLatestPricingFactors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load pricing factors: %w", err)
	}

	reviews, err := db.ListReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	avg, count := ReviewSummary(reviews)
	return &models.ProductDetail{
		Product:        *p,
		PricingFactors: factors,
		Reviews:        reviews,
		AverageRating:  avg,
		ReviewCount:    count,
	}, nil
}

// CreateProduct inserts a listing, its optional estimate and the opening
// price history in one transaction.
func (db *DB) CreateProduct(ctx context.Context, sellerID int, req *models.CreateProductRequest, est *ProductEstimate, searchText string) (*models.Product, error) {
	usage := 0
	if req.UsageDuration != nil {
		usage = *req.UsageDuration
	}
	var estimated *float64
	if est != nil {
		estimated = &est.Price
	}

	var id int
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO products (
				title, description, brand, model, condition,
				original_price, ai_estimated_price, user_price, usage_duration,
				category_id, seller_id, search_text
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`, req.Title, req.Description, req.Brand, req.Model, req.Condition,
			req.OriginalPrice, estimated, req.UserPrice, usage,
			req.CategoryID, sellerID, searchText,
		).Scan(&id)
		if err != nil {
			return productFKError(err)
		}

		if err := recordPrice(ctx, tx, id, models.PriceTypeUser, req.UserPrice); err != nil {
			return err
		}

		if est != nil {
			if _, err := insertPricingFactors(ctx, tx, id, est.Factors); err != nil {
				return err
			}
			if err := recordPrice(ctx, tx, id, models.PriceTypeAIEstimated, est.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetProductByID(ctx, id)
}

func productFKError(err error) error {
	code, constraint := pgError(err)
	if code != pgForeignKeyViolation {
		return err
	}
	if constraint == "products_seller_id_fkey" {
		return ErrUserNotFound
	}
	return ErrCategoryNotFound
}

// UpdateProduct applies a partial update. A changed user price and a new
// estimate are appended to the price history.
func (db *DB) UpdateProduct(ctx context.Context, id int, req *models.UpdateProductRequest, est *ProductEstimate, searchText *string) (*models.Product, error) {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var oldPrice float64
		err := tx.QueryRow(ctx, `SELECT user_price FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&oldPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return err
		}

		var estimated *float64
		if est != nil {
			estimated = &est.Price
		}

		_, err = tx.Exec(ctx, `
			UPDATE products SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				brand = COALESCE($4, brand),
				model = COALESCE($5, model),
				condition = COALESCE($6, condition),
				original_price = COALESCE($7, original_price),
				user_price = COALESCE($8, user_price),
				usage_duration = COALESCE($9, usage_duration),
				category_id = COALESCE($10, category_id),
				status = COALESCE($11, status),
				ai_estimated_price = COALESCE($12, ai_estimated_price),
				search_text = COALESCE($13, search_text),
				updated_at = NOW()
			WHERE id = $1
		`, id, req.Title, req.Description, req.Brand, req.Model, req.Condition,
			req.OriginalPrice, req.UserPrice, req.UsageDuration, req.CategoryID, req.Status,
			estimated, searchText)
		if err != nil {
			return productFKError(err)
		}

		if req.UserPrice != nil && *req.UserPrice != oldPrice {
			if err := recordPrice(ctx, tx, id, models.PriceTypeUser, *req.UserPrice); err != nil {
				return err
			}
		}

		if est != nil {
			if _, err := insertPricingFactors(ctx, tx, id, est.Factors); err != nil {
				return err
			}
			if err := recordPrice(ctx, tx, id, models.PriceTypeAIEstimated, est.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetProductByID(ctx, id)
}

// DeleteProduct removes a product and returns the image keys it referenced.
func (db *DB) DeleteProduct(ctx context.Context, id int) ([]string, error) {
	var images []string
	err := db.Pool.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING images`, id).Scan(&images)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return images, nil
}

// AddProductImage prepends key to the product's images and returns the new
// list plus the keys pushed past MaxProductImages.
func (db *DB) AddProductImage(ctx context.Context, id int, key string) (images, evicted []string, err error) {
	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var current []string
		err := tx.QueryRow(ctx, `SELECT images FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return err
		}

		images, evicted = PrependImage(current, key, models.MaxProductImages)
		_, err = tx.Exec(ctx, `UPDATE products SET images = $2, updated_at = NOW() WHERE id = $1`, id, images)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return images, evicted, nil
}

// PrependImage puts key first and keeps at most limit entries.
func PrependImage(images []string, key string, limit int) (kept, evicted []string) {
	all := make([]string, 0, len(images)+1)
	all = append(all, key)
	all = append(all, images...)
	if len(all) <= limit {
		return all, nil
	}
	return all[:limit], all[limit:]
}
