package domain

import (
	"fmt"
	"time"
)

// Operation is the kind of ledger movement a transaction represents.
type Operation string

const (
	OperationIncome   Operation = "income"
	OperationExpense  Operation = "expense"
	OperationTransfer Operation = "transfer"
)

// ValidOperation reports whether op is a known operation.
func ValidOperation(op Operation) bool {
	switch op {
	case OperationIncome, OperationExpense, OperationTransfer:
		return true
	}
	return false
}

// Split assigns a non-negative portion of a transaction to one account.
// Direction always derives from the operation and the account's polarity,
// never from a negative split amount.
type Split struct {
	AccountID string
	Amount    Money
}

// NewSplit validates and builds a split.
func NewSplit(accountID string, amount Money) (Split, error) {
	if accountID == "" {
		return Split{}, fmt.Errorf("%w: split account", ErrEmptyID)
	}
	if amount.IsNegative() {
		return Split{}, fmt.Errorf("%w: account %s", ErrNegativeAmount, accountID)
	}
	return Split{AccountID: accountID, Amount: amount}, nil
}

func validateSplits(splits []Split) error {
	for _, s := range splits {
		if s.AccountID == "" {
			return fmt.Errorf("%w: split account", ErrEmptyID)
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: account %s", ErrNegativeAmount, s.AccountID)
		}
	}
	return nil
}

func sumSplits(splits []Split) Money {
	total := Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

// Transaction is a realized ledger entry, either materialized from a
// schedule occurrence or created ad hoc. Mutation goes through the UpdateX
// methods, which re-run the split invariants and bump UpdatedAt.
type Transaction struct {
	id                string
	scheduleID        string
	name              string
	operation         Operation
	category          string
	subCategory       string
	date              DayDate
	originSplits      []Split
	destinationSplits []Split
	store             string
	updatedAt         time.Time
}

// TransactionDraft carries the fields for NewTransaction.
type TransactionDraft struct {
	ID                string
	ScheduleID        string
	Name              string
	Operation         Operation
	Category          string
	SubCategory       string
	Date              DayDate
	OriginSplits      []Split
	DestinationSplits []Split
	Store             string
	UpdatedAt         time.Time
}

// NewTransaction builds and validates a transaction.
func NewTransaction(d TransactionDraft) (*Transaction, error) {
	t := &Transaction{
		id:                d.ID,
		scheduleID:        d.ScheduleID,
		name:              d.Name,
		operation:         d.Operation,
		category:          d.Category,
		subCategory:       d.SubCategory,
		date:              d.Date,
		originSplits:      append([]Split(nil), d.OriginSplits...),
		destinationSplits: append([]Split(nil), d.DestinationSplits...),
		store:             d.Store,
		updatedAt:         d.UpdatedAt,
	}
	if t.updatedAt.IsZero() {
		t.updatedAt = time.Now().UTC()
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transaction) validate() error {
	if !ValidOperation(t.operation) {
		return fmt.Errorf("%w: %q", ErrInvalidOperation, t.operation)
	}
	if len(t.originSplits) == 0 {
		return ErrEmptyOrigin
	}
	if t.operation == OperationTransfer && len(t.destinationSplits) == 0 {
		return ErrTransferNeedsDestination
	}
	if t.operation != OperationTransfer && len(t.destinationSplits) > 0 {
		return ErrUnexpectedDestination
	}
	if err := validateSplits(t.originSplits); err != nil {
		return err
	}
	return validateSplits(t.destinationSplits)
}

func (t *Transaction) ID() string           { return t.id }
func (t *Transaction) ScheduleID() string   { return t.scheduleID }
func (t *Transaction) Name() string         { return t.name }
func (t *Transaction) Operation() Operation { return t.operation }
func (t *Transaction) Category() string     { return t.category }
func (t *Transaction) SubCategory() string  { return t.subCategory }
func (t *Transaction) Date() DayDate        { return t.date }
func (t *Transaction) Store() string        { return t.store }
func (t *Transaction) UpdatedAt() time.Time { return t.updatedAt }

// OriginSplits returns a copy of the origin split list.
func (t *Transaction) OriginSplits() []Split {
	return append([]Split(nil), t.originSplits...)
}

// DestinationSplits returns a copy of the destination split list.
func (t *Transaction) DestinationSplits() []Split {
	return append([]Split(nil), t.destinationSplits...)
}

// TotalOrigin sums the origin splits.
func (t *Transaction) TotalOrigin() Money {
	return sumSplits(t.originSplits)
}

// TotalDestination sums the destination splits.
func (t *Transaction) TotalDestination() Money {
	return sumSplits(t.destinationSplits)
}

// AccountIDs returns the distinct account ids across both split lists,
// origin side first.
func (t *Transaction) AccountIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range t.originSplits {
		if !seen[s.AccountID] {
			seen[s.AccountID] = true
			ids = append(ids, s.AccountID)
		}
	}
	for _, s := range t.destinationSplits {
		if !seen[s.AccountID] {
			seen[s.AccountID] = true
			ids = append(ids, s.AccountID)
		}
	}
	return ids
}

// UpdateName renames the transaction.
func (t *Transaction) UpdateName(name string) {
	t.name = name
	t.touch()
}

// UpdateDate moves the transaction to another day.
func (t *Transaction) UpdateDate(date DayDate) {
	t.date = date
	t.touch()
}

// UpdateStore changes the store annotation.
func (t *Transaction) UpdateStore(store string) {
	t.store = store
	t.touch()
}

// UpdateCategory reassigns category and subcategory. Category is metadata:
// callers must never re-balance accounts for this change.
func (t *Transaction) UpdateCategory(category, subCategory string) {
	t.category = category
	t.subCategory = subCategory
	t.touch()
}

// UpdateSplits replaces both split lists, re-validating the operation's
// split invariants.
func (t *Transaction) UpdateSplits(origin, destination []Split) error {
	prevOrigin, prevDest := t.originSplits, t.destinationSplits
	t.originSplits = append([]Split(nil), origin...)
	t.destinationSplits = append([]Split(nil), destination...)

	if err := t.validate(); err != nil {
		t.originSplits, t.destinationSplits = prevOrigin, prevDest
		return err
	}

	t.touch()
	return nil
}

// UpdateOperation changes the operation type, re-validating split shape.
func (t *Transaction) UpdateOperation(op Operation) error {
	prev := t.operation
	t.operation = op

	if err := t.validate(); err != nil {
		t.operation = prev
		return err
	}

	t.touch()
	return nil
}

func (t *Transaction) touch() {
	t.updatedAt = time.Now().UTC()
}

// RealAmount is the signed whole-ledger amount used by projections and
// reports. Income counts positive, expense negative. A transfer's sign
// depends on the polarity pair of its endpoint accounts; same-polarity
// transfers are neutral at the ledger level even though the per-account
// balances still move.
func (t *Transaction) RealAmount(typeOf func(accountID string) AccountType) Money {
	return realSignedAmount(t.operation, t.originSplits, t.destinationSplits, typeOf)
}

func realSignedAmount(op Operation, origin, destination []Split, typeOf func(accountID string) AccountType) Money {
	total := sumSplits(origin)

	switch op {
	case OperationIncome:
		return total
	case OperationExpense:
		return total.Neg()
	case OperationTransfer:
		from := typeOf(origin[0].AccountID)
		to := typeOf(destination[0].AccountID)
		switch transferEffect[polarityPair{from, to}] {
		case effectIncomeLike:
			return total
		case effectExpenseLike:
			return total.Neg()
		default:
			return Zero
		}
	}
	return Zero
}

type polarityPair struct {
	origin      AccountType
	destination AccountType
}

type transferEffectKind int

const (
	effectNeutral transferEffectKind = iota
	effectIncomeLike
	effectExpenseLike
)

// transferEffect spells out the full {origin polarity} x {destination
// polarity} table so no combination is left to fall-through branching.
var transferEffect = map[polarityPair]transferEffectKind{
	{AccountAsset, AccountAsset}:         effectNeutral,
	{AccountLiability, AccountLiability}: effectNeutral,
	{AccountLiability, AccountAsset}:     effectIncomeLike,
	{AccountAsset, AccountLiability}:     effectExpenseLike,
}
