package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/domain"
)

// AccountsService manages the account register itself. Balance mutations
// driven by transactions belong to TransactionsService; this service only
// ever sets a balance when opening an account.
type AccountsService struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	idGen           IDGenerator
	logger          zerolog.Logger
}

// NewAccountsService creates a new AccountsService.
func NewAccountsService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *AccountsService {
	return &AccountsService{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		idGen:           idGen,
		logger:          logger,
	}
}

// CreateAccountInput represents input for opening an account.
type CreateAccountInput struct {
	Name           string
	Type           domain.AccountType
	InitialBalance domain.Money
}

// Create opens a new account with its starting balance.
func (s *AccountsService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	account, err := domain.NewAccount(s.idGen.Generate(), input.Name, input.Type, input.InitialBalance, time.Time{})
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.Persist(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account_id", account.ID()).
		Str("type", string(account.Type())).
		Msg("account created")

	return account, nil
}

// Rename changes an account's display name.
func (s *AccountsService) Rename(ctx context.Context, id, name string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Rename(name)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.Persist(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// Delete removes an account. Accounts still referenced by transactions
// cannot be deleted; their history must be deleted or moved first.
func (s *AccountsService) Delete(ctx context.Context, id string) error {
	if _, err := s.accountRepo.FindByID(ctx, id); err != nil {
		return err
	}

	transactions, err := s.transactionRepo.FindByAccount(ctx, id)
	if err != nil {
		return err
	}
	if len(transactions) > 0 {
		return fmt.Errorf("%w: account %s has %d", domain.ErrAccountHasHistory, id, len(transactions))
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.DeleteByID(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", id).Msg("account deleted")

	return nil
}

// Get retrieves an account by id.
func (s *AccountsService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

// List retrieves all accounts.
func (s *AccountsService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.FindAll(ctx)
}
