package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTransaction_Validation(t *testing.T) {
	date := DayDateOf(2024, time.March, 1)
	origin := []Split{{AccountID: "checking", Amount: MoneyFromFloat(100)}}
	destination := []Split{{AccountID: "savings", Amount: MoneyFromFloat(100)}}

	tests := []struct {
		name        string
		draft       TransactionDraft
		expectError error
	}{
		{
			name:  "valid expense",
			draft: TransactionDraft{ID: "t1", Name: "x", Operation: OperationExpense, Category: "Food", Date: date, OriginSplits: origin},
		},
		{
			name:  "valid transfer",
			draft: TransactionDraft{ID: "t2", Name: "x", Operation: OperationTransfer, Category: "Transfer", Date: date, OriginSplits: origin, DestinationSplits: destination},
		},
		{
			name:        "transfer without destination",
			draft:       TransactionDraft{ID: "t3", Name: "x", Operation: OperationTransfer, Category: "Transfer", Date: date, OriginSplits: origin},
			expectError: ErrTransferNeedsDestination,
		},
		{
			name:        "expense with destination",
			draft:       TransactionDraft{ID: "t4", Name: "x", Operation: OperationExpense, Category: "Food", Date: date, OriginSplits: origin, DestinationSplits: destination},
			expectError: ErrUnexpectedDestination,
		},
		{
			name:        "no origin splits",
			draft:       TransactionDraft{ID: "t5", Name: "x", Operation: OperationIncome, Category: "Income", Date: date},
			expectError: ErrEmptyOrigin,
		},
		{
			name:        "unknown operation",
			draft:       TransactionDraft{ID: "t6", Name: "x", Operation: Operation("loan"), Category: "Misc", Date: date, OriginSplits: origin},
			expectError: ErrInvalidOperation,
		},
		{
			name: "negative split amount",
			draft: TransactionDraft{
				ID: "t7", Name: "x", Operation: OperationExpense, Category: "Food", Date: date,
				OriginSplits: []Split{{AccountID: "checking", Amount: MoneyFromFloat(-5)}},
			},
			expectError: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.draft)

			if tt.expectError == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectError) {
				t.Errorf("error = %v, want %v", err, tt.expectError)
			}
		})
	}
}

func TestTransaction_AccountIDs(t *testing.T) {
	tx := mustTransaction(t, TransactionDraft{
		ID: "t1", Name: "split transfer", Operation: OperationTransfer, Category: "Transfer",
		Date: DayDateOf(2024, time.March, 1),
		OriginSplits: []Split{
			{AccountID: "checking", Amount: MoneyFromFloat(50)},
			{AccountID: "savings", Amount: MoneyFromFloat(50)},
		},
		DestinationSplits: []Split{
			{AccountID: "vacation", Amount: MoneyFromFloat(60)},
			{AccountID: "checking", Amount: MoneyFromFloat(40)},
		},
	})

	got := tx.AccountIDs()
	want := []string{"checking", "savings", "vacation"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTransaction_RealAmount(t *testing.T) {
	date := DayDateOf(2024, time.March, 1)
	types := map[string]AccountType{
		"checking": AccountAsset,
		"savings":  AccountAsset,
		"card":     AccountLiability,
		"loan":     AccountLiability,
	}
	typeOf := func(id string) AccountType { return types[id] }

	tests := []struct {
		name  string
		draft TransactionDraft
		want  string
	}{
		{
			name: "income is positive",
			draft: TransactionDraft{
				ID: "t1", Name: "salary", Operation: OperationIncome, Category: "Income", Date: date,
				OriginSplits: []Split{{AccountID: "checking", Amount: MoneyFromFloat(2500)}},
			},
			want: "2500",
		},
		{
			name: "expense is negative",
			draft: TransactionDraft{
				ID: "t2", Name: "rent", Operation: OperationExpense, Category: "Housing", Date: date,
				OriginSplits: []Split{{AccountID: "checking", Amount: MoneyFromFloat(900)}},
			},
			want: "-900",
		},
		{
			name: "asset to asset transfer is neutral",
			draft: TransactionDraft{
				ID: "t3", Name: "to savings", Operation: OperationTransfer, Category: "Transfer", Date: date,
				OriginSplits:      []Split{{AccountID: "checking", Amount: MoneyFromFloat(300)}},
				DestinationSplits: []Split{{AccountID: "savings", Amount: MoneyFromFloat(300)}},
			},
			want: "0",
		},
		{
			name: "liability to liability transfer is neutral",
			draft: TransactionDraft{
				ID: "t4", Name: "balance transfer", Operation: OperationTransfer, Category: "Transfer", Date: date,
				OriginSplits:      []Split{{AccountID: "card", Amount: MoneyFromFloat(300)}},
				DestinationSplits: []Split{{AccountID: "loan", Amount: MoneyFromFloat(300)}},
			},
			want: "0",
		},
		{
			name: "liability to asset is income-like",
			draft: TransactionDraft{
				ID: "t5", Name: "cash advance", Operation: OperationTransfer, Category: "Transfer", Date: date,
				OriginSplits:      []Split{{AccountID: "card", Amount: MoneyFromFloat(200)}},
				DestinationSplits: []Split{{AccountID: "checking", Amount: MoneyFromFloat(200)}},
			},
			want: "200",
		},
		{
			name: "asset to liability is expense-like",
			draft: TransactionDraft{
				ID: "t6", Name: "card payment", Operation: OperationTransfer, Category: "Transfer", Date: date,
				OriginSplits:      []Split{{AccountID: "checking", Amount: MoneyFromFloat(200)}},
				DestinationSplits: []Split{{AccountID: "card", Amount: MoneyFromFloat(200)}},
			},
			want: "-200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mustTransaction(t, tt.draft)

			got := tx.RealAmount(typeOf)
			if got.String() != tt.want {
				t.Errorf("real amount = %s, want %s", got, tt.want)
			}
		})
	}
}

// Transfer neutrality at the ledger level must not stop per-account balances
// from moving. Both views are intentional; see TransactionDelta.
func TestTransferNeutralityStillMovesBalances(t *testing.T) {
	tx := mustTransaction(t, TransactionDraft{
		ID: "t1", Name: "to savings", Operation: OperationTransfer, Category: "Transfer",
		Date:              DayDateOf(2024, time.March, 1),
		OriginSplits:      []Split{{AccountID: "checking", Amount: MoneyFromFloat(300)}},
		DestinationSplits: []Split{{AccountID: "savings", Amount: MoneyFromFloat(300)}},
	})

	real := tx.RealAmount(func(string) AccountType { return AccountAsset })
	if !real.IsZero() {
		t.Errorf("real amount = %s, want 0", real)
	}

	checking := mustAccount(t, "checking", AccountAsset, "1000")
	savings := mustAccount(t, "savings", AccountAsset, "0")
	checking.AdjustFromTransaction(tx)
	savings.AdjustFromTransaction(tx)

	if checking.Balance().String() != "700" {
		t.Errorf("checking = %s, want 700", checking.Balance())
	}
	if savings.Balance().String() != "300" {
		t.Errorf("savings = %s, want 300", savings.Balance())
	}
}

func TestTransaction_UpdateSplits(t *testing.T) {
	tx := mustTransaction(t, TransactionDraft{
		ID: "t1", Name: "x", Operation: OperationTransfer, Category: "Transfer",
		Date:              DayDateOf(2024, time.March, 1),
		OriginSplits:      []Split{{AccountID: "checking", Amount: MoneyFromFloat(100)}},
		DestinationSplits: []Split{{AccountID: "savings", Amount: MoneyFromFloat(100)}},
	})

	// Dropping the destination of a transfer must be rejected and must not
	// leave the entity half-updated.
	err := tx.UpdateSplits([]Split{{AccountID: "checking", Amount: MoneyFromFloat(50)}}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if tx.TotalOrigin().String() != "100" {
		t.Errorf("origin total = %s, want unchanged 100", tx.TotalOrigin())
	}
	if len(tx.DestinationSplits()) != 1 {
		t.Errorf("destination splits = %d, want unchanged 1", len(tx.DestinationSplits()))
	}

	if err := tx.UpdateSplits(
		[]Split{{AccountID: "checking", Amount: MoneyFromFloat(80)}},
		[]Split{{AccountID: "vacation", Amount: MoneyFromFloat(80)}},
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.DestinationSplits()[0].AccountID != "vacation" {
		t.Errorf("destination = %s, want vacation", tx.DestinationSplits()[0].AccountID)
	}
}
