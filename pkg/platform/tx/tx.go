package tx

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a transaction in context so stores called inside a unit of
// work join it instead of opening their own.
func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a transaction from context if present.
func From(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sqlx.Tx)
	return tx, ok
}
