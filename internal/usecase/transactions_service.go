package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/infrastructure/metrics"
)

// AdjustmentCategory names the category/subcategory pair carried by
// synthesized balance-correction transactions.
const AdjustmentCategory = "Adjustment"

// TransactionsService orchestrates ledger writes. Every mutating operation
// brackets the balance updates and the transaction write in one database
// transaction so they can never diverge.
type TransactionsService struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	scheduleRepo    ScheduleRepository
	categories      CategoryLookup
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewTransactionsService creates a new TransactionsService.
func NewTransactionsService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	scheduleRepo ScheduleRepository,
	categories CategoryLookup,
	idGen IDGenerator,
	logger zerolog.Logger,
) *TransactionsService {
	return &TransactionsService{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		scheduleRepo:    scheduleRepo,
		categories:      categories,
		idGen:           idGen,
		logger:          logger,
	}
}

// WithRetrier re-runs balance-writing transactions on transient database
// conflicts. Without it, a serialization failure surfaces to the caller.
func (s *TransactionsService) WithRetrier(retrier Retrier) *TransactionsService {
	s.retrier = retrier
	return s
}

// WithMetrics attaches ledger instrumentation. Without it the service runs
// unobserved.
func (s *TransactionsService) WithMetrics(m *metrics.Metrics) *TransactionsService {
	s.metrics = m
	return s
}

// inTransaction brackets op in a database transaction, retried as a whole
// when a retrier is attached. op must re-read any state it mutates, since a
// retry replays it against a fresh transaction.
func (s *TransactionsService) inTransaction(ctx context.Context, op func(tx Transaction) error) error {
	run := func() error {
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := op(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	if s.retrier == nil {
		return run()
	}
	return s.retrier.Retry(ctx, run)
}

// RecordTransactionInput represents input for recording a transaction.
type RecordTransactionInput struct {
	ScheduleID        string
	Name              string
	Operation         domain.Operation
	Category          string
	SubCategory       string
	Date              domain.DayDate
	OriginSplits      []domain.Split
	DestinationSplits []domain.Split
	Store             string
}

// Record validates, applies balance effects and persists a new transaction.
func (s *TransactionsService) Record(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	return s.record(ctx, input, nil)
}

// RecordAndThen records a transaction and runs extra inside the same database
// transaction, after the ledger and balance writes. Callers use it for
// bookkeeping that must commit and roll back together with the ledger entry.
func (s *TransactionsService) RecordAndThen(ctx context.Context, input RecordTransactionInput, extra func(tx Transaction) error) (*domain.Transaction, error) {
	return s.record(ctx, input, extra)
}

func (s *TransactionsService) record(ctx context.Context, input RecordTransactionInput, extra func(tx Transaction) error) (*domain.Transaction, error) {
	transaction, err := domain.NewTransaction(domain.TransactionDraft{
		ID:                s.idGen.Generate(),
		ScheduleID:        input.ScheduleID,
		Name:              input.Name,
		Operation:         input.Operation,
		Category:          input.Category,
		SubCategory:       input.SubCategory,
		Date:              input.Date,
		OriginSplits:      input.OriginSplits,
		DestinationSplits: input.DestinationSplits,
		Store:             input.Store,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.Category, input.SubCategory); err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(tx Transaction) error {
		if err := s.applyEffect(ctx, tx, transaction); err != nil {
			return err
		}
		if err := s.transactionRepo.Persist(ctx, tx, transaction); err != nil {
			return err
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionsRecorded.WithLabelValues(string(transaction.Operation())).Inc()
	}
	s.logger.Info().
		Str("transaction_id", transaction.ID()).
		Str("operation", string(transaction.Operation())).
		Str("amount", transaction.TotalOrigin().String()).
		Msg("transaction recorded")

	return transaction, nil
}

// UpdateTransactionInput represents input for updating a transaction.
type UpdateTransactionInput struct {
	Name              string
	Operation         domain.Operation
	Category          string
	SubCategory       string
	Date              domain.DayDate
	OriginSplits      []domain.Split
	DestinationSplits []domain.Split
	Store             string
}

// Update replaces a transaction. Splits may move to entirely different
// accounts, so the previous effect is fully reversed and the new effect
// fully applied across the union of touched accounts; no delta shortcut.
func (s *TransactionsService) Update(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	previous, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := domain.NewTransaction(domain.TransactionDraft{
		ID:                previous.ID(),
		ScheduleID:        previous.ScheduleID(),
		Name:              input.Name,
		Operation:         input.Operation,
		Category:          input.Category,
		SubCategory:       input.SubCategory,
		Date:              input.Date,
		OriginSplits:      input.OriginSplits,
		DestinationSplits: input.DestinationSplits,
		Store:             input.Store,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.Category, input.SubCategory); err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(tx Transaction) error {
		accountIDs := unionAccountIDs(previous, updated)
		accounts, err := s.lockAccounts(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, id := range accountIDs {
			account := accounts[id]
			account.AdjustOnTransactionDeletion(previous)
			account.AdjustFromTransaction(updated)
			if err := s.accountRepo.UpdateBalance(ctx, tx, id, account.Balance(), now); err != nil {
				return err
			}
		}

		return s.transactionRepo.Persist(ctx, tx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("transaction_id", id).Msg("transaction updated")

	return updated, nil
}

// Delete reverses a transaction's balance effect and removes it.
func (s *TransactionsService) Delete(ctx context.Context, id string) error {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.inTransaction(ctx, func(tx Transaction) error {
		if err := s.reverseEffect(ctx, tx, transaction); err != nil {
			return err
		}
		return s.transactionRepo.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.TransactionsDeleted.Inc()
	}
	s.logger.Info().Str("transaction_id", id).Msg("transaction deleted")

	return nil
}

// Get retrieves a transaction by id.
func (s *TransactionsService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactionRepo.FindByID(ctx, id)
}

// List retrieves transactions matching criteria.
func (s *TransactionsService) List(ctx context.Context, criteria Criteria) ([]*domain.Transaction, error) {
	return s.transactionRepo.FindByCriteria(ctx, criteria)
}

// ListByAccount retrieves an account's full transaction history in replay
// order.
func (s *TransactionsService) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.transactionRepo.FindByAccount(ctx, accountID)
}

// AccountAdjustment sets an account's balance to newBalance and, when the
// difference is non-zero, records an adjustment transaction carrying that
// difference — manual corrections always leave a ledger trace. The balance
// write and the trace commit together.
func (s *TransactionsService) AccountAdjustment(ctx context.Context, accountID string, newBalance domain.Money) (*domain.Transaction, error) {
	var adjustment *domain.Transaction
	var diff domain.Money

	err := s.inTransaction(ctx, func(tx Transaction) error {
		adjustment = nil

		account, err := s.accountRepo.FindByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}

		diff = account.Adjust(newBalance)
		if diff.IsZero() {
			return nil
		}

		adjustment, err = s.buildAdjustment(account, diff)
		if err != nil {
			return err
		}

		if err := s.accountRepo.UpdateBalance(ctx, tx, accountID, account.Balance(), time.Now().UTC()); err != nil {
			return err
		}
		return s.transactionRepo.Persist(ctx, tx, adjustment)
	})
	if err != nil {
		return nil, err
	}
	if adjustment == nil {
		return nil, nil
	}

	if s.metrics != nil {
		s.metrics.AdjustmentsRecorded.Inc()
	}
	s.logger.Info().
		Str("account_id", accountID).
		Str("difference", diff.String()).
		Msg("account balance adjusted")

	return adjustment, nil
}

// buildAdjustment synthesizes the trace transaction for a balance delta.
// The operation is chosen so that the transaction's replayed effect on this
// account equals the delta, which keeps integrity replays consistent across
// both account polarities.
func (s *TransactionsService) buildAdjustment(account *domain.Account, delta domain.Money) (*domain.Transaction, error) {
	increase := delta.IsPositive()
	if account.Type() == domain.AccountLiability {
		increase = !increase
	}

	operation := domain.OperationExpense
	if increase {
		operation = domain.OperationIncome
	}

	return domain.NewTransaction(domain.TransactionDraft{
		ID:           s.idGen.Generate(),
		Name:         fmt.Sprintf("Adjustment: %s", account.Name()),
		Operation:    operation,
		Category:     AdjustmentCategory,
		SubCategory:  AdjustmentCategory,
		Date:         domain.NewDayDate(time.Now().UTC()),
		OriginSplits: []domain.Split{{AccountID: account.ID(), Amount: delta.Abs()}},
	})
}

// ReassignTransactionsCategory moves every transaction in fromCategory to
// toCategory. Category is metadata: balances are never touched.
func (s *TransactionsService) ReassignTransactionsCategory(ctx context.Context, fromCategory, toCategory string) (int, error) {
	return s.reassign(ctx,
		NewCriteria(Filter{Field: "category", Operator: OperatorEqual, Value: fromCategory}),
		func(t *domain.Transaction) {
			t.UpdateCategory(toCategory, t.SubCategory())
		})
}

// ReassignTransactionsSubCategory moves every transaction in (category,
// fromSubCategory) to toSubCategory within the same category.
func (s *TransactionsService) ReassignTransactionsSubCategory(ctx context.Context, category, fromSubCategory, toSubCategory string) (int, error) {
	return s.reassign(ctx,
		NewCriteria(
			Filter{Field: "category", Operator: OperatorEqual, Value: category},
			Filter{Field: "sub_category", Operator: OperatorEqual, Value: fromSubCategory},
		),
		func(t *domain.Transaction) {
			t.UpdateCategory(category, toSubCategory)
		})
}

// ReassignTransactionsCategoryAndSubcategory moves every transaction in
// fromCategory to (toCategory, toSubCategory).
func (s *TransactionsService) ReassignTransactionsCategoryAndSubcategory(ctx context.Context, fromCategory, toCategory, toSubCategory string) (int, error) {
	return s.reassign(ctx,
		NewCriteria(Filter{Field: "category", Operator: OperatorEqual, Value: fromCategory}),
		func(t *domain.Transaction) {
			t.UpdateCategory(toCategory, toSubCategory)
		})
}

func (s *TransactionsService) reassign(ctx context.Context, criteria Criteria, apply func(*domain.Transaction)) (int, error) {
	transactions, err := s.transactionRepo.FindByCriteria(ctx, criteria)
	if err != nil {
		return 0, err
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	err = s.inTransaction(ctx, func(tx Transaction) error {
		for _, t := range transactions {
			apply(t)
			if err := s.transactionRepo.Persist(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("count", len(transactions)).Msg("transactions reassigned")

	return len(transactions), nil
}

// EnsureCategoryUnused reports a structured error enumerating every
// transaction and schedule still referencing the category (optionally
// narrowed to one subcategory). A nil return means the category can be
// removed without a replacement.
func (s *TransactionsService) EnsureCategoryUnused(ctx context.Context, category, subCategory string) error {
	filters := []Filter{{Field: "category", Operator: OperatorEqual, Value: category}}
	if subCategory != "" {
		filters = append(filters, Filter{Field: "sub_category", Operator: OperatorEqual, Value: subCategory})
	}
	criteria := NewCriteria(filters...)

	transactions, err := s.transactionRepo.FindByCriteria(ctx, criteria)
	if err != nil {
		return err
	}

	schedules, err := s.scheduleRepo.FindByCriteria(ctx, criteria)
	if err != nil {
		return err
	}

	if len(transactions) == 0 && len(schedules) == 0 {
		return nil
	}

	blocking := &domain.CategoryInUseError{Category: category, SubCategory: subCategory}
	for _, t := range transactions {
		blocking.TransactionIDs = append(blocking.TransactionIDs, t.ID())
	}
	for _, sc := range schedules {
		blocking.ScheduleIDs = append(blocking.ScheduleIDs, sc.ID())
	}
	return blocking
}

// applyEffect locks every touched account, applies the transaction's delta
// and persists the new balances.
func (s *TransactionsService) applyEffect(ctx context.Context, tx Transaction, transaction *domain.Transaction) error {
	return s.adjustAccounts(ctx, tx, transaction, func(a *domain.Account) {
		a.AdjustFromTransaction(transaction)
	})
}

// reverseEffect is the literal inverse of applyEffect.
func (s *TransactionsService) reverseEffect(ctx context.Context, tx Transaction, transaction *domain.Transaction) error {
	return s.adjustAccounts(ctx, tx, transaction, func(a *domain.Account) {
		a.AdjustOnTransactionDeletion(transaction)
	})
}

func (s *TransactionsService) adjustAccounts(ctx context.Context, tx Transaction, transaction *domain.Transaction, adjust func(*domain.Account)) error {
	accountIDs := transaction.AccountIDs()
	sort.Strings(accountIDs)

	accounts, err := s.lockAccounts(ctx, tx, accountIDs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, id := range accountIDs {
		account := accounts[id]
		adjust(account)
		if err := s.accountRepo.UpdateBalance(ctx, tx, id, account.Balance(), now); err != nil {
			return err
		}
	}
	return nil
}

// lockAccounts fetches accounts with row locks, in sorted id order to avoid
// deadlocks between concurrent writers.
func (s *TransactionsService) lockAccounts(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.Account, error) {
	accounts, err := s.accountRepo.FindByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID()] = a
	}
	return m, nil
}

func (s *TransactionsService) checkCategory(ctx context.Context, category, subCategory string) error {
	if s.categories == nil || category == AdjustmentCategory {
		return nil
	}

	ok, err := s.categories.CategoryExists(ctx, category)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, category)
	}

	if subCategory == "" {
		return nil
	}
	ok, err = s.categories.SubCategoryExists(ctx, category, subCategory)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q/%q", domain.ErrCategoryNotFound, category, subCategory)
	}
	return nil
}

func unionAccountIDs(transactions ...*domain.Transaction) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range transactions {
		for _, id := range t.AccountIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
