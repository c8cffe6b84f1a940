package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

// MockAccountRepository is an in-memory mock of AccountRepository. Every
// method can be overridden per test via its Func field; without an override
// it behaves like a map-backed store.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	FindByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	FindByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	FindByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	FindAllFunc            func(ctx context.Context) ([]*domain.Account, error)
	FindByCriteriaFunc     func(ctx context.Context, criteria usecase.Criteria) ([]*domain.Account, error)
	PersistFunc            func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	UpdateBalanceFunc      func(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error
	DeleteByIDFunc         func(ctx context.Context, tx usecase.Transaction, id string) error
	ExistsFunc             func(ctx context.Context, id string) (bool, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Seed stores accounts directly, bypassing the repository methods.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID()] = a
	}
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, tx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockAccountRepository) FindByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.FindByIDsForUpdateFunc != nil {
		return m.FindByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.Account, error) {
	if m.FindByCriteriaFunc != nil {
		return m.FindByCriteriaFunc(ctx, criteria)
	}
	return m.FindAll(ctx)
}

func (m *MockAccountRepository) Persist(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID()] = account
	return nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	// The service mutates the loaded aggregate in place; the stored
	// pointer already carries the new balance.
	return nil
}

func (m *MockAccountRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[id]
	return ok, nil
}

// MockTransactionRepository is an in-memory mock of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	FindByIDFunc       func(ctx context.Context, id string) (*domain.Transaction, error)
	FindAllFunc        func(ctx context.Context) ([]*domain.Transaction, error)
	FindByCriteriaFunc func(ctx context.Context, criteria usecase.Criteria) ([]*domain.Transaction, error)
	FindByAccountFunc  func(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	PersistFunc        func(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error
	DeleteByIDFunc     func(ctx context.Context, tx usecase.Transaction, id string) error
	ExistsFunc         func(ctx context.Context, id string) (bool, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{transactions: make(map[string]*domain.Transaction)}
}

func (m *MockTransactionRepository) Seed(transactions ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range transactions {
		m.transactions[t.ID()] = t
	}
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindAll(ctx context.Context) ([]*domain.Transaction, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	transactions := make([]*domain.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		transactions = append(transactions, t)
	}
	return transactions, nil
}

func (m *MockTransactionRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.Transaction, error) {
	if m.FindByCriteriaFunc != nil {
		return m.FindByCriteriaFunc(ctx, criteria)
	}
	// Default honors only the equality filters the services actually use.
	all, _ := m.FindAll(ctx)
	var matched []*domain.Transaction
	for _, t := range all {
		if matchesTransaction(t, criteria) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func matchesTransaction(t *domain.Transaction, criteria usecase.Criteria) bool {
	for _, f := range criteria.Filters {
		if f.Operator != usecase.OperatorEqual {
			continue
		}
		var got string
		switch f.Field {
		case "category":
			got = t.Category()
		case "sub_category":
			got = t.SubCategory()
		case "schedule_id":
			got = t.ScheduleID()
		default:
			continue
		}
		if got != f.Value {
			return false
		}
	}
	return true
}

func (m *MockTransactionRepository) FindByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	if m.FindByAccountFunc != nil {
		return m.FindByAccountFunc(ctx, accountID)
	}
	all, _ := m.FindAll(ctx)
	var matched []*domain.Transaction
	for _, t := range all {
		for _, id := range t.AccountIDs() {
			if id == accountID {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched, nil
}

func (m *MockTransactionRepository) Persist(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, tx, transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[transaction.ID()] = transaction
	return nil
}

func (m *MockTransactionRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transactions[id]
	return ok, nil
}

// MockScheduleRepository is an in-memory mock of ScheduleRepository.
type MockScheduleRepository struct {
	mu        sync.RWMutex
	schedules map[string]*domain.ScheduledTransaction

	FindByIDFunc       func(ctx context.Context, id string) (*domain.ScheduledTransaction, error)
	FindAllFunc        func(ctx context.Context) ([]*domain.ScheduledTransaction, error)
	FindByCriteriaFunc func(ctx context.Context, criteria usecase.Criteria) ([]*domain.ScheduledTransaction, error)
	PersistFunc        func(ctx context.Context, tx usecase.Transaction, schedule *domain.ScheduledTransaction) error
	DeleteByIDFunc     func(ctx context.Context, tx usecase.Transaction, id string) error
	ExistsFunc         func(ctx context.Context, id string) (bool, error)
}

func NewMockScheduleRepository() *MockScheduleRepository {
	return &MockScheduleRepository{schedules: make(map[string]*domain.ScheduledTransaction)}
}

func (m *MockScheduleRepository) Seed(schedules ...*domain.ScheduledTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range schedules {
		m.schedules[s.ID()] = s
	}
}

func (m *MockScheduleRepository) FindByID(ctx context.Context, id string) (*domain.ScheduledTransaction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, domain.ErrScheduleNotFound
}

func (m *MockScheduleRepository) FindAll(ctx context.Context) ([]*domain.ScheduledTransaction, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	schedules := make([]*domain.ScheduledTransaction, 0, len(m.schedules))
	for _, s := range m.schedules {
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (m *MockScheduleRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.ScheduledTransaction, error) {
	if m.FindByCriteriaFunc != nil {
		return m.FindByCriteriaFunc(ctx, criteria)
	}
	all, _ := m.FindAll(ctx)
	var matched []*domain.ScheduledTransaction
	for _, s := range all {
		if matchesSchedule(s, criteria) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func matchesSchedule(s *domain.ScheduledTransaction, criteria usecase.Criteria) bool {
	for _, f := range criteria.Filters {
		if f.Operator != usecase.OperatorEqual {
			continue
		}
		var got string
		switch f.Field {
		case "category":
			got = s.Category()
		case "sub_category":
			got = s.SubCategory()
		default:
			continue
		}
		if got != f.Value {
			return false
		}
	}
	return true
}

func (m *MockScheduleRepository) Persist(ctx context.Context, tx usecase.Transaction, schedule *domain.ScheduledTransaction) error {
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, tx, schedule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[schedule.ID()] = schedule
	return nil
}

func (m *MockScheduleRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return domain.ErrScheduleNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *MockScheduleRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.schedules[id]
	return ok, nil
}

type occurrenceKey struct {
	scheduleID string
	index      int
}

// MockModificationRepository is an in-memory mock of ModificationRepository.
type MockModificationRepository struct {
	mu   sync.RWMutex
	mods map[occurrenceKey]*domain.RecurrenceModification

	FindByOccurrenceFunc   func(ctx context.Context, scheduleID string, occurrenceIndex int) (*domain.RecurrenceModification, error)
	FindByScheduleFunc     func(ctx context.Context, scheduleID string) ([]*domain.RecurrenceModification, error)
	PersistFunc            func(ctx context.Context, tx usecase.Transaction, modification *domain.RecurrenceModification) error
	DeleteByOccurrenceFunc func(ctx context.Context, tx usecase.Transaction, scheduleID string, occurrenceIndex int) error
	DeleteByScheduleFunc   func(ctx context.Context, tx usecase.Transaction, scheduleID string) error
}

func NewMockModificationRepository() *MockModificationRepository {
	return &MockModificationRepository{mods: make(map[occurrenceKey]*domain.RecurrenceModification)}
}

func (m *MockModificationRepository) Seed(mods ...*domain.RecurrenceModification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mod := range mods {
		m.mods[occurrenceKey{mod.ScheduleID(), mod.OccurrenceIndex()}] = mod
	}
}

func (m *MockModificationRepository) FindByOccurrence(ctx context.Context, scheduleID string, occurrenceIndex int) (*domain.RecurrenceModification, error) {
	if m.FindByOccurrenceFunc != nil {
		return m.FindByOccurrenceFunc(ctx, scheduleID, occurrenceIndex)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// A missing record is not an error: it means an unmodified occurrence.
	return m.mods[occurrenceKey{scheduleID, occurrenceIndex}], nil
}

func (m *MockModificationRepository) FindBySchedule(ctx context.Context, scheduleID string) ([]*domain.RecurrenceModification, error) {
	if m.FindByScheduleFunc != nil {
		return m.FindByScheduleFunc(ctx, scheduleID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var mods []*domain.RecurrenceModification
	for key, mod := range m.mods {
		if key.scheduleID == scheduleID {
			mods = append(mods, mod)
		}
	}
	return mods, nil
}

func (m *MockModificationRepository) Persist(ctx context.Context, tx usecase.Transaction, modification *domain.RecurrenceModification) error {
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, tx, modification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mods[occurrenceKey{modification.ScheduleID(), modification.OccurrenceIndex()}] = modification
	return nil
}

func (m *MockModificationRepository) DeleteByOccurrence(ctx context.Context, tx usecase.Transaction, scheduleID string, occurrenceIndex int) error {
	if m.DeleteByOccurrenceFunc != nil {
		return m.DeleteByOccurrenceFunc(ctx, tx, scheduleID, occurrenceIndex)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mods, occurrenceKey{scheduleID, occurrenceIndex})
	return nil
}

func (m *MockModificationRepository) DeleteBySchedule(ctx context.Context, tx usecase.Transaction, scheduleID string) error {
	if m.DeleteByScheduleFunc != nil {
		return m.DeleteByScheduleFunc(ctx, tx, scheduleID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.mods {
		if key.scheduleID == scheduleID {
			delete(m.mods, key)
		}
	}
	return nil
}

// MockTransaction is a mock database transaction recording its outcome.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions and keeps them for
// later inspection.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator returns deterministic sequential ids.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// MockCache is an in-memory mock of Cache. TTLs are recorded but never
// enforced.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
