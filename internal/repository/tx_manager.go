package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// optimisticRetries bounds how often a workflow transaction is replayed when
// the request row's version moved under it. Approval traffic is low-frequency,
// so contention clears quickly or not at all.
const optimisticRetries = 3

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// RunInTxRetry replays fn in a fresh transaction when it fails with a
	// version conflict, up to the retry bound, then surfaces the conflict.
	RunInTxRetry(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

func (t *transactionManager) RunInTxRetry(ctx context.Context, fn func(txCtx context.Context) error) error {
	var err error
	for attempt := 0; attempt < optimisticRetries; attempt++ {
		err = t.RunInTx(ctx, fn)
		if !errors.Is(err, apperr.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
