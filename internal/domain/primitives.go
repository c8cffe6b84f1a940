package domain

import (
	"fmt"
	"time"
)

// Primitives are the flat, JSON-serializable shapes each entity promises to
// keep stable for persistence. Every entity pairs a Primitives() method with
// a FromPrimitives reconstructor that re-runs construction-time validation.

// SplitPrimitives is the persisted shape of a Split.
type SplitPrimitives struct {
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
}

// PatternPrimitives is the persisted shape of a RecurrencePattern.
type PatternPrimitives struct {
	Type           string `json:"type"`
	StartDate      string `json:"startDate"`
	Frequency      string `json:"frequency,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	MaxOccurrences *int   `json:"maxOccurrences,omitempty"`
}

// TransactionPrimitives is the persisted shape of a Transaction.
type TransactionPrimitives struct {
	ID                string            `json:"id"`
	ScheduleID        string            `json:"scheduleId,omitempty"`
	Name              string            `json:"name"`
	Operation         string            `json:"operation"`
	Category          string            `json:"category"`
	SubCategory       string            `json:"subCategory"`
	Date              string            `json:"date"`
	OriginSplits      []SplitPrimitives `json:"originSplits"`
	DestinationSplits []SplitPrimitives `json:"destinationSplits"`
	Store             string            `json:"store,omitempty"`
	UpdatedAt         string            `json:"updatedAt"`
}

// SchedulePrimitives is the persisted shape of a ScheduledTransaction.
type SchedulePrimitives struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Operation         string            `json:"operation"`
	Category          string            `json:"category"`
	SubCategory       string            `json:"subCategory"`
	OriginSplits      []SplitPrimitives `json:"originSplits"`
	DestinationSplits []SplitPrimitives `json:"destinationSplits"`
	RecurrencePattern PatternPrimitives `json:"recurrencePattern"`
	Store             string            `json:"store,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	UpdatedAt         string            `json:"updatedAt"`
}

// AccountPrimitives is the persisted shape of an Account.
type AccountPrimitives struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	UpdatedAt string `json:"updatedAt"`
}

// ModificationPrimitives is the persisted shape of a RecurrenceModification.
type ModificationPrimitives struct {
	ID                string            `json:"id"`
	ScheduleID        string            `json:"scheduleId"`
	OccurrenceIndex   int               `json:"occurrenceIndex"`
	OriginalDate      string            `json:"originalDate"`
	State             string            `json:"state"`
	Date              string            `json:"date,omitempty"`
	OriginSplits      []SplitPrimitives `json:"originSplits,omitempty"`
	DestinationSplits []SplitPrimitives `json:"destinationSplits,omitempty"`
	UpdatedAt         string            `json:"updatedAt"`
}

func splitsToPrimitives(splits []Split) []SplitPrimitives {
	out := make([]SplitPrimitives, 0, len(splits))
	for _, s := range splits {
		out = append(out, SplitPrimitives{AccountID: s.AccountID, Amount: s.Amount.String()})
	}
	return out
}

func splitsFromPrimitives(prims []SplitPrimitives) ([]Split, error) {
	out := make([]Split, 0, len(prims))
	for _, p := range prims {
		amount, err := MoneyFromString(p.Amount)
		if err != nil {
			return nil, err
		}
		s, err := NewSplit(p.AccountID, amount)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Primitives returns the pattern's persisted shape.
func (p *RecurrencePattern) Primitives() PatternPrimitives {
	out := PatternPrimitives{
		Type:      string(p.patternType),
		StartDate: p.startDate.String(),
	}
	if p.hasFrequency {
		out.Frequency = p.frequency.String()
	}
	if p.hasEndDate {
		out.EndDate = p.endDate.String()
	}
	if p.hasMax {
		max := p.maxOccurrences
		out.MaxOccurrences = &max
	}
	return out
}

// PatternFromPrimitives rebuilds a RecurrencePattern, re-validating the
// field combination.
func PatternFromPrimitives(prims PatternPrimitives) (*RecurrencePattern, error) {
	start, err := ParseDayDate(prims.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start date %q", ErrInvalidRecurrence, prims.StartDate)
	}

	var freq *Frequency
	if prims.Frequency != "" {
		f, err := ParseFrequency(prims.Frequency)
		if err != nil {
			return nil, err
		}
		freq = &f
	}

	var end *DayDate
	if prims.EndDate != "" {
		d, err := ParseDayDate(prims.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end date %q", ErrInvalidRecurrence, prims.EndDate)
		}
		end = &d
	}

	return NewRecurrencePattern(PatternType(prims.Type), start, freq, end, prims.MaxOccurrences)
}

// Primitives returns the transaction's persisted shape.
func (t *Transaction) Primitives() TransactionPrimitives {
	return TransactionPrimitives{
		ID:                t.id,
		ScheduleID:        t.scheduleID,
		Name:              t.name,
		Operation:         string(t.operation),
		Category:          t.category,
		SubCategory:       t.subCategory,
		Date:              t.date.String(),
		OriginSplits:      splitsToPrimitives(t.originSplits),
		DestinationSplits: splitsToPrimitives(t.destinationSplits),
		Store:             t.store,
		UpdatedAt:         t.updatedAt.Format(time.RFC3339Nano),
	}
}

// TransactionFromPrimitives rebuilds a Transaction, re-running validation.
func TransactionFromPrimitives(prims TransactionPrimitives) (*Transaction, error) {
	date, err := ParseDayDate(prims.Date)
	if err != nil {
		return nil, fmt.Errorf("bad transaction date %q: %w", prims.Date, err)
	}
	origin, err := splitsFromPrimitives(prims.OriginSplits)
	if err != nil {
		return nil, err
	}
	destination, err := splitsFromPrimitives(prims.DestinationSplits)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, prims.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updatedAt %q: %w", prims.UpdatedAt, err)
	}

	return NewTransaction(TransactionDraft{
		ID:                prims.ID,
		ScheduleID:        prims.ScheduleID,
		Name:              prims.Name,
		Operation:         Operation(prims.Operation),
		Category:          prims.Category,
		SubCategory:       prims.SubCategory,
		Date:              date,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Store:             prims.Store,
		UpdatedAt:         updatedAt,
	})
}

// Primitives returns the schedule's persisted shape.
func (s *ScheduledTransaction) Primitives() SchedulePrimitives {
	return SchedulePrimitives{
		ID:                s.id,
		Name:              s.name,
		Operation:         string(s.operation),
		Category:          s.category,
		SubCategory:       s.subCategory,
		OriginSplits:      splitsToPrimitives(s.originSplits),
		DestinationSplits: splitsToPrimitives(s.destinationSplits),
		RecurrencePattern: s.pattern.Primitives(),
		Store:             s.store,
		Tags:              append([]string(nil), s.tags...),
		UpdatedAt:         s.updatedAt.Format(time.RFC3339Nano),
	}
}

// ScheduleFromPrimitives rebuilds a ScheduledTransaction.
func ScheduleFromPrimitives(prims SchedulePrimitives) (*ScheduledTransaction, error) {
	pattern, err := PatternFromPrimitives(prims.RecurrencePattern)
	if err != nil {
		return nil, err
	}
	origin, err := splitsFromPrimitives(prims.OriginSplits)
	if err != nil {
		return nil, err
	}
	destination, err := splitsFromPrimitives(prims.DestinationSplits)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, prims.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updatedAt %q: %w", prims.UpdatedAt, err)
	}

	return NewScheduledTransaction(ScheduleDraft{
		ID:                prims.ID,
		Name:              prims.Name,
		Operation:         Operation(prims.Operation),
		Category:          prims.Category,
		SubCategory:       prims.SubCategory,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Pattern:           pattern,
		Store:             prims.Store,
		Tags:              prims.Tags,
		UpdatedAt:         updatedAt,
	})
}

// Primitives returns the account's persisted shape.
func (a *Account) Primitives() AccountPrimitives {
	return AccountPrimitives{
		ID:        a.id,
		Name:      a.name,
		Type:      string(a.accountType),
		Balance:   a.balance.String(),
		UpdatedAt: a.updatedAt.Format(time.RFC3339Nano),
	}
}

// AccountFromPrimitives rebuilds an Account.
func AccountFromPrimitives(prims AccountPrimitives) (*Account, error) {
	balance, err := MoneyFromString(prims.Balance)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, prims.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updatedAt %q: %w", prims.UpdatedAt, err)
	}

	return NewAccount(prims.ID, prims.Name, AccountType(prims.Type), balance, updatedAt)
}

// Primitives returns the modification's persisted shape.
func (m *RecurrenceModification) Primitives() ModificationPrimitives {
	out := ModificationPrimitives{
		ID:              m.id,
		ScheduleID:      m.scheduleID,
		OccurrenceIndex: m.occurrenceIndex,
		OriginalDate:    m.originalDate.String(),
		State:           string(m.state),
		UpdatedAt:       m.updatedAt.Format(time.RFC3339Nano),
	}
	if m.hasDate {
		out.Date = m.date.String()
	}
	if m.hasSplits {
		out.OriginSplits = splitsToPrimitives(m.originSplits)
		out.DestinationSplits = splitsToPrimitives(m.destinationSplits)
	}
	return out
}

// ModificationFromPrimitives rebuilds a RecurrenceModification.
func ModificationFromPrimitives(prims ModificationPrimitives) (*RecurrenceModification, error) {
	if !ValidOccurrenceState(OccurrenceState(prims.State)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStateChange, prims.State)
	}
	originalDate, err := ParseDayDate(prims.OriginalDate)
	if err != nil {
		return nil, fmt.Errorf("bad original date %q: %w", prims.OriginalDate, err)
	}

	m, err := NewRecurrenceModification(prims.ID, prims.ScheduleID, prims.OccurrenceIndex, originalDate)
	if err != nil {
		return nil, err
	}

	if prims.Date != "" {
		d, err := ParseDayDate(prims.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date override %q: %w", prims.Date, err)
		}
		m.date = d
		m.hasDate = true
	}
	if prims.OriginSplits != nil || prims.DestinationSplits != nil {
		origin, err := splitsFromPrimitives(prims.OriginSplits)
		if err != nil {
			return nil, err
		}
		destination, err := splitsFromPrimitives(prims.DestinationSplits)
		if err != nil {
			return nil, err
		}
		m.originSplits = origin
		m.destinationSplits = destination
		m.hasSplits = true
	}

	m.state = OccurrenceState(prims.State)
	updatedAt, err := time.Parse(time.RFC3339Nano, prims.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updatedAt %q: %w", prims.UpdatedAt, err)
	}
	m.updatedAt = updatedAt

	return m, nil
}
