// Package transaction carries an ambient gorm transaction through
// context so repositories join the caller's unit of work.
package transaction

import (
	"context"

	"gorm.io/gorm"
)

type transactionContextKey struct{}

// WithTx returns a context whose repositories will use the given
// transaction handle.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, transactionContextKey{}, tx)
}

// Database resolves the active DB handle for a context: the ambient
// transaction when one is present, the root connection otherwise.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (t *Database) GetTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(transactionContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return t.db
}

// Transaction runs fn inside one database transaction. The transaction
// handle rides the context so every repository call inside fn joins it.
func (t *Database) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(transactionContextKey{}).(*gorm.DB); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
