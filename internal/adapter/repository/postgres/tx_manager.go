package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwell/cashplan/internal/usecase"
)

type beginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager begins pgx transactions for the services' atomic units, so a
// balance write and its ledger entry always commit together.
type TxManager struct {
	pool beginner
}

// NewTxManager creates a new TxManager on top of a connection pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new database transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

// ledgerTx adapts pgx.Tx to usecase.Transaction. Repositories in this
// package unwrap it via txQuerier to run statements inside the same
// transaction.
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *ledgerTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
