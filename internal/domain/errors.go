package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Construction errors
	ErrEmptyID = errors.New("entity id cannot be empty")

	// Amount errors
	ErrInvalidAmount  = errors.New("amount must be a valid decimal")
	ErrNegativeAmount = errors.New("split amount cannot be negative")

	// Frequency errors
	ErrInvalidFrequency = errors.New("invalid frequency token")

	// Recurrence errors
	ErrInvalidRecurrence    = errors.New("invalid recurrence pattern")
	ErrOccurrenceOutOfRange = errors.New("occurrence index out of range")
	ErrOccurrenceNotPending = errors.New("occurrence is not pending")
	ErrInvalidStateChange   = errors.New("invalid occurrence state transition")

	// Transaction errors
	ErrTransferNeedsDestination = errors.New("transfer requires at least one destination split")
	ErrUnexpectedDestination    = errors.New("income and expense transactions cannot carry destination splits")
	ErrEmptyOrigin              = errors.New("transaction requires at least one origin split")
	ErrInvalidOperation         = errors.New("invalid operation type")
	ErrTransactionNotFound      = errors.New("transaction not found")

	// Account errors
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountHasHistory  = errors.New("account still has transactions")

	// Schedule errors
	ErrScheduleNotFound     = errors.New("scheduled transaction not found")
	ErrModificationNotFound = errors.New("recurrence modification not found")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryInUseError blocks category removal while transactions or schedules
// still reference it. Callers must supply a replacement and reassign first.
type CategoryInUseError struct {
	Category       string
	SubCategory    string
	TransactionIDs []string
	ScheduleIDs    []string
}

func (e *CategoryInUseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "category %q", e.Category)
	if e.SubCategory != "" {
		fmt.Fprintf(&b, "/%q", e.SubCategory)
	}
	b.WriteString(" is still referenced")
	if len(e.TransactionIDs) > 0 {
		fmt.Fprintf(&b, " by %d transaction(s)", len(e.TransactionIDs))
	}
	if len(e.ScheduleIDs) > 0 {
		fmt.Fprintf(&b, " by %d schedule(s)", len(e.ScheduleIDs))
	}
	return b.String()
}
