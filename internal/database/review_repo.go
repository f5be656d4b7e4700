package database

import (
	"context"
	"math"

	"github.com/ToaaMusic/ai-main/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, productID, userID int, req *models.CreateReviewRequest) (*models.Review, error) {
	r := &models.Review{}
	err := db.Pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO product_reviews (product_id, user_id, rating, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, product_id, user_id, rating, content, created_at
		)
		SELECT i.id, i.product_id, i.user_id, COALESCE(u.username, ''), i.rating, i.content, i.created_at
		FROM inserted i
		LEFT JOIN users u ON u.id = i.user_id
	`, productID, userID, req.Rating, req.Content).Scan(
		&r.ID, &r.ProductID, &r.UserID, &r.Username, &r.Rating, &r.Content, &r.CreatedAt,
	)
	if err != nil {
		if code, constraint := pgError(err); code == pgForeignKeyViolation {
			if constraint == "product_reviews_user_id_fkey" {
				return nil, ErrUserNotFound
			}
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListReviews returns a product's reviews, newest first.
func (db *DB) ListReviews(ctx context.Context, productID int) ([]models.Review, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.id, r.product_id, r.user_id, COALESCE(u.username, ''), r.rating, r.content, r.created_at
		FROM product_reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Username, &r.Rating, &r.Content, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReviewSummary returns the average rating, to one decimal, and the count.
func ReviewSummary(reviews []models.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10, len(reviews)
}
