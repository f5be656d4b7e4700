package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ToaaMusic/ai-main/internal/models"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring (I)LIKE match with wildcards escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func recordPrice(ctx context.Context, q execer, productID int, priceType models.PriceType, price float64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO price_history (product_id, price_type, price)
		VALUES ($1, $2, $3)
	`, productID, priceType, price)
	return err
}
