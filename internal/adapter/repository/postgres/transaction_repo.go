package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

const transactionColumns = `id, COALESCE(schedule_id, ''), name, operation, category, sub_category,
	date::text, origin_splits, destination_splits, COALESCE(store, ''), updated_at`

var transactionFilterColumns = map[string]string{
	"id":           "id",
	"schedule_id":  "schedule_id",
	"name":         "name",
	"operation":    "operation",
	"category":     "category",
	"sub_category": "sub_category",
	"date":         "date",
	"store":        "store",
}

// TransactionRepository implements usecase.TransactionRepository. Split
// lists are stored as jsonb; the distinct account ids are denormalized into
// a text[] column so per-account history queries stay indexable.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// FindByID retrieves a transaction by id.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)
	return scanTransaction(row)
}

// FindAll retrieves every transaction, oldest first.
func (r *TransactionRepository) FindAll(ctx context.Context) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// FindByCriteria retrieves transactions matching criteria.
func (r *TransactionRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.Transaction, error) {
	where, args, err := buildWhere(criteria, transactionFilterColumns)
	if err != nil {
		return nil, err
	}
	suffix, err := buildSuffix(criteria, transactionFilterColumns)
	if err != nil {
		return nil, err
	}
	if suffix == "" {
		suffix = " ORDER BY date, id"
	}

	rows, err := r.pool.Query(ctx, "SELECT "+transactionColumns+" FROM transactions"+where+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// FindByAccount retrieves every transaction touching one account, oldest
// first. The integrity replay depends on this order being stable.
func (r *TransactionRepository) FindByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE $1 = ANY(account_ids) ORDER BY date, id", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Persist inserts or fully replaces a transaction.
func (r *TransactionRepository) Persist(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	prims := transaction.Primitives()
	origin, err := json.Marshal(prims.OriginSplits)
	if err != nil {
		return err
	}
	destination, err := json.Marshal(prims.DestinationSplits)
	if err != nil {
		return err
	}

	_, err = txQuerier(tx).Exec(ctx, `
		INSERT INTO transactions (
			id, schedule_id, name, operation, category, sub_category,
			date, origin_splits, destination_splits, store, account_ids, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			schedule_id = EXCLUDED.schedule_id,
			name = EXCLUDED.name,
			operation = EXCLUDED.operation,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			date = EXCLUDED.date,
			origin_splits = EXCLUDED.origin_splits,
			destination_splits = EXCLUDED.destination_splits,
			store = EXCLUDED.store,
			account_ids = EXCLUDED.account_ids,
			updated_at = EXCLUDED.updated_at`,
		prims.ID, nullString(prims.ScheduleID), prims.Name, prims.Operation,
		prims.Category, prims.SubCategory, prims.Date, origin, destination,
		nullString(prims.Store), transaction.AccountIDs(), transaction.UpdatedAt())
	return err
}

// DeleteByID removes a transaction.
func (r *TransactionRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Exists reports whether a transaction exists.
func (r *TransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		prims       domain.TransactionPrimitives
		origin      []byte
		destination []byte
		updatedAt   time.Time
	)
	err := row.Scan(&prims.ID, &prims.ScheduleID, &prims.Name, &prims.Operation,
		&prims.Category, &prims.SubCategory, &prims.Date, &origin, &destination,
		&prims.Store, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(origin, &prims.OriginSplits); err != nil {
		return nil, err
	}
	if destination != nil {
		if err := json.Unmarshal(destination, &prims.DestinationSplits); err != nil {
			return nil, err
		}
	}
	prims.UpdatedAt = updatedAt.Format(time.RFC3339Nano)

	return domain.TransactionFromPrimitives(prims)
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}
