package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

const accountColumns = "id, name, type, balance::text, updated_at"

var accountFilterColumns = map[string]string{
	"id":   "id",
	"name": "name",
	"type": "type",
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// FindByID retrieves an account by id.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

// FindByIDForUpdate retrieves an account with a FOR UPDATE row lock.
func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row := txQuerier(tx).QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1 FOR UPDATE", id)
	return scanAccount(row)
}

// FindByIDsForUpdate locks multiple accounts. Rows come back ordered by id
// so callers lock in a deterministic order.
func (r *AccountRepository) FindByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := txQuerier(tx).Query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// FindAll retrieves every account.
func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// FindByCriteria retrieves accounts matching criteria.
func (r *AccountRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.Account, error) {
	where, args, err := buildWhere(criteria, accountFilterColumns)
	if err != nil {
		return nil, err
	}
	suffix, err := buildSuffix(criteria, accountFilterColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, "SELECT "+accountColumns+" FROM accounts"+where+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// Persist inserts or fully replaces an account.
func (r *AccountRepository) Persist(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	prims := account.Primitives()
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO accounts (id, name, type, balance, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at`,
		prims.ID, prims.Name, prims.Type, prims.Balance, account.UpdatedAt())
	return err
}

// UpdateBalance writes only the running balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx,
		"UPDATE accounts SET balance = $2::numeric, updated_at = $3 WHERE id = $1",
		id, balance.String(), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// DeleteByID removes an account.
func (r *AccountRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Exists reports whether an account exists.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		prims     domain.AccountPrimitives
		updatedAt time.Time
	)
	if err := row.Scan(&prims.ID, &prims.Name, &prims.Type, &prims.Balance, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	prims.UpdatedAt = updatedAt.Format(time.RFC3339Nano)

	return domain.AccountFromPrimitives(prims)
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
