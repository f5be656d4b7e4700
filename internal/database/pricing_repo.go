package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ToaaMusic/ai-main/internal/models"
)

const pricingFactorsColumns = `id, product_id, brand_value, market_demand, condition_score,
	usage_duration, functionality_score, overall_score, created_at`

func scanPricingFactors(row pgx.Row) (*models.PricingFactors, error) {
	f := &models.PricingFactors{}
	err := row.Scan(&f.ID, &f.ProductID, &f.BrandValue, &f.MarketDemand, &f.ConditionScore,
		&f.UsageDuration, &f.FunctionalityScore, &f.OverallScore, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func insertPricingFactors(ctx context.Context, tx pgx.Tx, productID int, f models.PricingFactors) (*models.PricingFactors, error) {
	return scanPricingFactors(tx.QueryRow(ctx, `
		INSERT INTO pricing_factors (
			product_id, brand_value, market_demand, condition_score,
			usage_duration, functionality_score, overall_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+pricingFactorsColumns,
		productID, f.BrandValue, f.MarketDemand, f.ConditionScore,
		f.UsageDuration, f.FunctionalityScore, f.OverallScore))
}

// SavePricingResult stores an estimate for an existing product: the factors
// row, the product's estimated price and an ai_estimated history point.
func (db *DB) SavePricingResult(ctx context.Context, productID int, est ProductEstimate) (*models.PricingFactors, error) {
	var saved *models.PricingFactors
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET ai_estimated_price = $2, updated_at = NOW()
			WHERE id = $1
		`, productID, est.Price)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}

		saved, err = insertPricingFactors(ctx, tx, productID, est.Factors)
		if err != nil {
			return err
		}

		return recordPrice(ctx, tx, productID, models.PriceTypeAIEstimated, est.Price)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetLatestPricingFactors returns the newest factors row of a product, or nil
// when it was never estimated.
func (db *DB) GetLatestPricingFactors(ctx context.Context, productID int) (*models.PricingFactors, error) {
	f, err := scanPricingFactors(db.Pool.QueryRow(ctx, `
		SELECT `+pricingFactorsColumns+`
		FROM pricing_factors
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// ListPriceHistory returns a product's price points, oldest first.
func (db *DB) ListPriceHistory(ctx context.Context, productID int) ([]models.PricePoint, error) {
	var exists bool
	if err := db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, product_id, price_type, price, recorded_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY recorded_at, id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []models.PricePoint{}
	for rows.Next() {
		var pp models.PricePoint
		if err := rows.Scan(&pp.ID, &pp.ProductID, &pp.PriceType, &pp.Price, &pp.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, pp)
	}
	return points, rows.Err()
}
