package database

import (
	"context"
	"fmt"
	"math"

	"github.com/ToaaMusic/ai-main/internal/models"
	"github.com/ToaaMusic/ai-main/internal/pricing"
)

// priceRanges are the listing price buckets reported on the dashboard, in
// display order. A price falls in the first range whose max it is below.
var priceRanges = []struct {
	label string
	max   float64
}{
	{"0-500", 500},
	{"500-1000", 1000},
	{"1000-3000", 3000},
	{"3000-5000", 5000},
	{"5000+", math.Inf(1)},
}

// PriceRangeLabel names the bucket a listing price belongs to.
func PriceRangeLabel(price float64) string {
	for _, r := range priceRanges {
		if price < r.max {
			return r.label
		}
	}
	return priceRanges[len(priceRanges)-1].label
}

// PriceRangeStats lays counts out over every range, empty ones included.
func PriceRangeStats(counts map[string]int, total int) []models.PriceRangeStat {
	stats := make([]models.PriceRangeStat, 0, len(priceRanges))
	for _, r := range priceRanges {
		n := counts[r.label]
		stats = append(stats, models.PriceRangeStat{
			Range:      r.label,
			Count:      n,
			Percentage: percentage(n, total),
		})
	}
	return stats
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(n) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetAnalytics aggregates the marketplace dashboard from live data.
func (db *DB) GetAnalytics(ctx context.Context) (*models.Analytics, error) {
	a := &models.Analytics{}

	var accuracy *float64
	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM transactions WHERE status = 'completed'),
			(SELECT COALESCE(SUM(deal_price), 0)::float8 FROM transactions WHERE status = 'completed'),
			(SELECT COALESCE(AVG(user_price), 0)::float8 FROM products),
			(SELECT AVG(GREATEST(0, 100 - ABS(t.deal_price - p.ai_estimated_price) / t.deal_price * 100))::float8
			 FROM transactions t
			 JOIN products p ON p.id = t.product_id
			 WHERE t.status = 'completed' AND p.ai_estimated_price IS NOT NULL AND t.deal_price > 0)
	`).Scan(&a.TotalProducts, &a.TotalUsers, &a.TotalTransactions, &a.TotalRevenue, &a.AveragePrice, &accuracy)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	a.TotalRevenue = round2(a.TotalRevenue)
	a.AveragePrice = round2(a.AveragePrice)
	if accuracy != nil {
		a.PriceAccuracy = round1(*accuracy)
	}

	if a.CategoryStats, err = db.categoryStats(ctx, a.TotalProducts); err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	if a.PriceRangeStats, err = db.priceRangeStats(ctx, a.TotalProducts); err != nil {
		return nil, fmt.Errorf("price range stats: %w", err)
	}
	if a.ConditionStats, err = db.conditionStats(ctx); err != nil {
		return nil, fmt.Errorf("condition stats: %w", err)
	}
	if a.BrandStats, err = db.brandStats(ctx); err != nil {
		return nil, fmt.Errorf("brand stats: %w", err)
	}
	if a.RecentTransactions, err = db.recentTransactions(ctx); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}

	return a, nil
}

func (db *DB) categoryStats(ctx context.Context, total int) ([]models.CategoryStat, error) {
	rows, err := db.Pool.Query(ctx, `
		WITH RECURSIVE tree AS (
			SELECT id, id AS root_id FROM categories WHERE parent_id IS NULL
			UNION ALL
			SELECT c.id, tree.root_id FROM categories c JOIN tree ON c.parent_id = tree.id
		)
		SELECT r.name, COUNT(p.id)
		FROM categories r
		LEFT JOIN tree ON tree.root_id = r.id
		LEFT JOIN products p ON p.category_id = tree.id
		WHERE r.parent_id IS NULL
		GROUP BY r.id, r.name
		ORDER BY COUNT(p.id) DESC, r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.CategoryStat{}
	for rows.Next() {
		var s models.CategoryStat
		if err := rows.Scan(&s.Name, &s.Count); err != nil {
			return nil, err
		}
		s.Percentage = percentage(s.Count, total)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (db *DB) priceRangeStats(ctx context.Context, total int) ([]models.PriceRangeStat, error) {
	rows, err := db.Pool.Query(ctx, `SELECT user_price::float8 FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var price float64
		if err := rows.Scan(&price); err != nil {
			return nil, err
		}
		counts[PriceRangeLabel(price)]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return PriceRangeStats(counts, total), nil
}

func (db *DB) conditionStats(ctx context.Context) ([]models.ConditionStat, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT condition, COUNT(*), AVG(user_price)::float8
		FROM products
		GROUP BY condition
		ORDER BY COUNT(*) DESC, condition
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.ConditionStat{}
	for rows.Next() {
		var s models.ConditionStat
		if err := rows.Scan(&s.Condition, &s.Count, &s.AvgPrice); err != nil {
			return nil, err
		}
		s.AvgPrice = round2(s.AvgPrice)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (db *DB) brandStats(ctx context.Context) ([]models.BrandStat, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT brand, COUNT(*), AVG(user_price)::float8
		FROM products
		WHERE brand IS NOT NULL AND brand <> ''
		GROUP BY brand
		ORDER BY COUNT(*) DESC, brand
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.BrandStat{}
	for rows.Next() {
		var s models.BrandStat
		if err := rows.Scan(&s.Brand, &s.Count, &s.AvgPrice); err != nil {
			return nil, err
		}
		s.AvgPrice = round2(s.AvgPrice)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (db *DB) recentTransactions(ctx context.Context) ([]models.RecentTransaction, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT t.id, p.title, t.deal_price::float8, p.ai_estimated_price::float8, t.created_at
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []models.RecentTransaction{}
	for rows.Next() {
		var r models.RecentTransaction
		if err := rows.Scan(&r.ID, &r.ProductTitle, &r.DealPrice, &r.AIEstimatedPrice, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.AIEstimatedPrice != nil {
			acc := pricing.Accuracy(r.DealPrice, *r.AIEstimatedPrice)
			r.Accuracy = &acc
		}
		recent = append(recent, r)
	}
	return recent, rows.Err()
}
