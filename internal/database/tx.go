package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SafeTx is a bun.Tx whose Rollback is a no-op once Commit succeeded, so
// callers can always defer it.
type SafeTx struct {
	bun.Tx
	done bool
}

// BeginSafeTx starts a transaction on db.
func BeginSafeTx(ctx context.Context, db bun.IDB) (*SafeTx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &SafeTx{Tx: tx}, nil
}

func (tx *SafeTx) Commit() error {
	if tx.done {
		return nil
	}
	if err := tx.Tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx.done = true
	return nil
}

func (tx *SafeTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	return tx.Tx.Rollback()
}

// InTx runs fn in a transaction and commits when it returns nil.
func InTx(ctx context.Context, db bun.IDB, fn func(bun.Tx) error) error {
	tx, err := BeginSafeTx(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx.Tx); err != nil {
		return err
	}
	return tx.Commit()
}
