package usecase

import (
	"context"
	"time"

	"github.com/finwell/cashplan/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	FindByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	FindByCriteria(ctx context.Context, criteria Criteria) ([]*domain.Account, error)
	Persist(ctx context.Context, tx Transaction, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance domain.Money, updatedAt time.Time) error
	DeleteByID(ctx context.Context, tx Transaction, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindAll(ctx context.Context) ([]*domain.Transaction, error)
	FindByCriteria(ctx context.Context, criteria Criteria) ([]*domain.Transaction, error)
	FindByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	Persist(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	DeleteByID(ctx context.Context, tx Transaction, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// ScheduleRepository defines data access for scheduled transactions.
type ScheduleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.ScheduledTransaction, error)
	FindAll(ctx context.Context) ([]*domain.ScheduledTransaction, error)
	FindByCriteria(ctx context.Context, criteria Criteria) ([]*domain.ScheduledTransaction, error)
	Persist(ctx context.Context, tx Transaction, schedule *domain.ScheduledTransaction) error
	DeleteByID(ctx context.Context, tx Transaction, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// ModificationRepository defines data access for per-occurrence overrides.
// At most one record exists per (schedule id, occurrence index).
type ModificationRepository interface {
	FindByOccurrence(ctx context.Context, scheduleID string, occurrenceIndex int) (*domain.RecurrenceModification, error)
	FindBySchedule(ctx context.Context, scheduleID string) ([]*domain.RecurrenceModification, error)
	Persist(ctx context.Context, tx Transaction, modification *domain.RecurrenceModification) error
	DeleteByOccurrence(ctx context.Context, tx Transaction, scheduleID string, occurrenceIndex int) error
	DeleteBySchedule(ctx context.Context, tx Transaction, scheduleID string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs a transactional closure when the database reports a
// transient conflict. Implementations decide which errors qualify.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
