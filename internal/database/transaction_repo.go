package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ToaaMusic/ai-main/internal/models"
)

// Purchase sells an available product to buyerID. The deal price defaults to
// the listing's user price.
func (db *DB) Purchase(ctx context.Context, productID, buyerID int, dealPrice *float64) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var sellerID int
		var status models.ProductStatus
		var userPrice float64
		err := tx.QueryRow(ctx, `
			SELECT seller_id, status, user_price FROM products WHERE id = $1 FOR UPDATE
		`, productID).Scan(&sellerID, &status, &userPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return err
		}

		if sellerID == buyerID {
			return ErrOwnProduct
		}
		if status != models.StatusAvailable {
			return ErrProductUnavailable
		}

		price := userPrice
		if dealPrice != nil {
			price = *dealPrice
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO transactions (buyer_id, seller_id, product_id, deal_price, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, buyer_id, seller_id, product_id, deal_price, status, created_at
		`, buyerID, sellerID, productID, price, models.TransactionCompleted).Scan(
			&t.ID, &t.BuyerID, &t.SellerID, &t.ProductID, &t.DealPrice, &t.Status, &t.CreatedAt,
		)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1
		`, productID, models.StatusSold); err != nil {
			return err
		}

		return recordPrice(ctx, tx, productID, models.PriceTypeDeal, price)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
