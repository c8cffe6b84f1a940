package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
	"github.com/finwell/cashplan/internal/usecase/mocks"
)

func newAccountsService(env *serviceEnv) *usecase.AccountsService {
	return usecase.NewAccountsService(
		env.txManager,
		env.accountRepo,
		env.transactionRepo,
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
	)
}

func TestAccountsService_Create(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateAccountInput
		expectedErr error
	}{
		{
			name: "asset account",
			input: usecase.CreateAccountInput{
				Name:           "checking",
				Type:           domain.AccountAsset,
				InitialBalance: domain.Zero,
			},
		},
		{
			name: "liability account with opening debt",
			input: usecase.CreateAccountInput{
				Name:           "credit card",
				Type:           domain.AccountLiability,
				InitialBalance: domain.Zero,
			},
		},
		{
			name: "unknown account type",
			input: usecase.CreateAccountInput{
				Name: "weird",
				Type: domain.AccountType("equity"),
			},
			expectedErr: domain.ErrInvalidAccountType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newServiceEnv()
			service := newAccountsService(env)

			account, err := service.Create(context.Background(), tt.input)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("err = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if account.Name() != tt.input.Name {
				t.Errorf("name = %s, want %s", account.Name(), tt.input.Name)
			}
			if _, err := service.Get(context.Background(), account.ID()); err != nil {
				t.Errorf("created account not persisted: %v", err)
			}
		})
	}
}

func TestAccountsService_Delete(t *testing.T) {
	t.Run("empty account deletes", func(t *testing.T) {
		env := newServiceEnv()
		service := newAccountsService(env)
		env.accountRepo.Seed(mustAccount(t, "idle", domain.AccountAsset, "0"))

		if err := service.Delete(context.Background(), "idle"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := service.Get(context.Background(), "idle"); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("deleted account still found, err = %v", err)
		}
	})

	t.Run("account with history is protected", func(t *testing.T) {
		env := newServiceEnv()
		service := newAccountsService(env)
		env.accountRepo.Seed(mustAccount(t, "busy", domain.AccountAsset, "100"))

		if _, err := env.transactions.Record(context.Background(), usecase.RecordTransactionInput{
			Name:         "coffee",
			Operation:    domain.OperationExpense,
			Category:     "Food",
			Date:         domain.DayDateOf(2024, time.July, 1),
			OriginSplits: splits(t, "busy", "4"),
		}); err != nil {
			t.Fatalf("Record: %v", err)
		}

		if err := service.Delete(context.Background(), "busy"); !errors.Is(err, domain.ErrAccountHasHistory) {
			t.Fatalf("err = %v, want ErrAccountHasHistory", err)
		}
		if _, err := service.Get(context.Background(), "busy"); err != nil {
			t.Errorf("account disappeared after failed delete: %v", err)
		}
	})
}
