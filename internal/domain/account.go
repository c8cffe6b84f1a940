package domain

import (
	"fmt"
	"time"
)

// AccountType is the polarity of an account. Liability polarity flips the
// stored sign of income/expense effects so balances stay comparable across
// account kinds.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
)

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t AccountType) bool {
	return t == AccountAsset || t == AccountLiability
}

func (t AccountType) polarity() Money {
	if t == AccountLiability {
		return MoneyFromFloat(-1)
	}
	return MoneyFromFloat(1)
}

// Account holds an incrementally maintained running balance. The balance is
// only ever mutated through the Adjust* methods; the integrity service
// recomputes it from history out of band and reports drift.
type Account struct {
	id          string
	name        string
	accountType AccountType
	balance     Money
	updatedAt   time.Time
}

// NewAccount builds and validates an account.
func NewAccount(id, name string, accountType AccountType, balance Money, updatedAt time.Time) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: account", ErrEmptyID)
	}
	if !ValidAccountType(accountType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, accountType)
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return &Account{
		id:          id,
		name:        name,
		accountType: accountType,
		balance:     balance,
		updatedAt:   updatedAt,
	}, nil
}

func (a *Account) ID() string        { return a.id }
func (a *Account) Name() string      { return a.name }
func (a *Account) Type() AccountType { return a.accountType }
func (a *Account) Balance() Money    { return a.balance }
func (a *Account) UpdatedAt() time.Time {
	return a.updatedAt
}

// Rename changes the display name.
func (a *Account) Rename(name string) {
	a.name = name
	a.updatedAt = time.Now().UTC()
}

// TransactionDelta is the polarity-adjusted balance effect of one
// transaction on one account.
//
// Income credits and expense debits the origin accounts, flipped for
// liability polarity. Transfer moves are raw: the origin side loses its
// split amount and the destination side gains it, regardless of polarity —
// polarity only classifies a transfer's whole-ledger real amount.
func TransactionDelta(accountID string, accountType AccountType, t *Transaction) Money {
	switch t.Operation() {
	case OperationIncome, OperationExpense:
		amount := splitAmountFor(t.OriginSplits(), accountID)
		if t.Operation() == OperationExpense {
			amount = amount.Neg()
		}
		return amount.Mul(accountType.polarity().Decimal())
	case OperationTransfer:
		delta := splitAmountFor(t.DestinationSplits(), accountID)
		return delta.Sub(splitAmountFor(t.OriginSplits(), accountID))
	}
	return Zero
}

func splitAmountFor(splits []Split, accountID string) Money {
	total := Zero
	for _, s := range splits {
		if s.AccountID == accountID {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// AdjustFromTransaction applies the transaction's effect to the running
// balance and returns the applied delta.
func (a *Account) AdjustFromTransaction(t *Transaction) Money {
	delta := TransactionDelta(a.id, a.accountType, t)
	a.balance = a.balance.Add(delta)
	a.updatedAt = time.Now().UTC()
	return delta
}

// AdjustOnTransactionDeletion reverses AdjustFromTransaction by subtracting
// the same computed delta, so deletion is the literal inverse of recording.
func (a *Account) AdjustOnTransactionDeletion(t *Transaction) Money {
	delta := TransactionDelta(a.id, a.accountType, t)
	a.balance = a.balance.Sub(delta)
	a.updatedAt = time.Now().UTC()
	return delta.Neg()
}

// Adjust overrides the balance directly and returns the signed difference,
// which callers must turn into an adjustment transaction.
func (a *Account) Adjust(newBalance Money) Money {
	diff := newBalance.Sub(a.balance)
	a.balance = newBalance
	a.updatedAt = time.Now().UTC()
	return diff
}
