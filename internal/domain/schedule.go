package domain

import (
	"fmt"
	"time"
)

// ScheduledTransaction is a recurring or one-time template that projects
// future transactions. It carries no per-occurrence state; occurrence-level
// changes live in RecurrenceModification records.
type ScheduledTransaction struct {
	id                string
	name              string
	operation         Operation
	category          string
	subCategory       string
	originSplits      []Split
	destinationSplits []Split
	pattern           *RecurrencePattern
	store             string
	tags              []string
	updatedAt         time.Time
}

// ScheduleDraft carries the fields for NewScheduledTransaction.
type ScheduleDraft struct {
	ID                string
	Name              string
	Operation         Operation
	Category          string
	SubCategory       string
	OriginSplits      []Split
	DestinationSplits []Split
	Pattern           *RecurrencePattern
	Store             string
	Tags              []string
	UpdatedAt         time.Time
}

// NewScheduledTransaction builds and validates a template.
func NewScheduledTransaction(d ScheduleDraft) (*ScheduledTransaction, error) {
	s := &ScheduledTransaction{
		id:                d.ID,
		name:              d.Name,
		operation:         d.Operation,
		category:          d.Category,
		subCategory:       d.SubCategory,
		originSplits:      append([]Split(nil), d.OriginSplits...),
		destinationSplits: append([]Split(nil), d.DestinationSplits...),
		pattern:           d.Pattern,
		store:             d.Store,
		tags:              append([]string(nil), d.Tags...),
		updatedAt:         d.UpdatedAt,
	}
	if s.updatedAt.IsZero() {
		s.updatedAt = time.Now().UTC()
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ScheduledTransaction) validate() error {
	if !ValidOperation(s.operation) {
		return fmt.Errorf("%w: %q", ErrInvalidOperation, s.operation)
	}
	if len(s.originSplits) == 0 {
		return ErrEmptyOrigin
	}
	if s.operation == OperationTransfer && len(s.destinationSplits) == 0 {
		return ErrTransferNeedsDestination
	}
	if s.operation != OperationTransfer && len(s.destinationSplits) > 0 {
		return ErrUnexpectedDestination
	}
	if s.pattern == nil {
		return fmt.Errorf("%w: recurrence pattern is required", ErrInvalidRecurrence)
	}
	if err := validateSplits(s.originSplits); err != nil {
		return err
	}
	return validateSplits(s.destinationSplits)
}

func (s *ScheduledTransaction) ID() string                  { return s.id }
func (s *ScheduledTransaction) Name() string                { return s.name }
func (s *ScheduledTransaction) Operation() Operation        { return s.operation }
func (s *ScheduledTransaction) Category() string            { return s.category }
func (s *ScheduledTransaction) SubCategory() string         { return s.subCategory }
func (s *ScheduledTransaction) Pattern() *RecurrencePattern { return s.pattern }
func (s *ScheduledTransaction) Store() string               { return s.store }
func (s *ScheduledTransaction) UpdatedAt() time.Time        { return s.updatedAt }

// OriginSplits returns a copy of the template's origin splits.
func (s *ScheduledTransaction) OriginSplits() []Split {
	return append([]Split(nil), s.originSplits...)
}

// DestinationSplits returns a copy of the template's destination splits.
func (s *ScheduledTransaction) DestinationSplits() []Split {
	return append([]Split(nil), s.destinationSplits...)
}

// Tags returns a copy of the template's tags.
func (s *ScheduledTransaction) Tags() []string {
	return append([]string(nil), s.tags...)
}

// TotalOrigin sums the template's origin splits.
func (s *ScheduledTransaction) TotalOrigin() Money {
	return sumSplits(s.originSplits)
}

// RealAmount is the signed whole-ledger amount one occurrence of this
// template contributes, using the same polarity rules as
// Transaction.RealAmount.
func (s *ScheduledTransaction) RealAmount(typeOf func(accountID string) AccountType) Money {
	return realSignedAmount(s.operation, s.originSplits, s.destinationSplits, typeOf)
}

// AccountIDs returns the distinct account ids across both split lists.
func (s *ScheduledTransaction) AccountIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, sp := range s.originSplits {
		if !seen[sp.AccountID] {
			seen[sp.AccountID] = true
			ids = append(ids, sp.AccountID)
		}
	}
	for _, sp := range s.destinationSplits {
		if !seen[sp.AccountID] {
			seen[sp.AccountID] = true
			ids = append(ids, sp.AccountID)
		}
	}
	return ids
}

// UpdateName renames the template.
func (s *ScheduledTransaction) UpdateName(name string) {
	s.name = name
	s.touch()
}

// UpdateCategory reassigns category and subcategory.
func (s *ScheduledTransaction) UpdateCategory(category, subCategory string) {
	s.category = category
	s.subCategory = subCategory
	s.touch()
}

// UpdateStore changes the store annotation.
func (s *ScheduledTransaction) UpdateStore(store string) {
	s.store = store
	s.touch()
}

// UpdateTags replaces the tag list.
func (s *ScheduledTransaction) UpdateTags(tags []string) {
	s.tags = append([]string(nil), tags...)
	s.touch()
}

// UpdatePattern replaces the recurrence pattern.
func (s *ScheduledTransaction) UpdatePattern(p *RecurrencePattern) error {
	if p == nil {
		return fmt.Errorf("%w: recurrence pattern is required", ErrInvalidRecurrence)
	}
	s.pattern = p
	s.touch()
	return nil
}

// UpdateSplits replaces both split lists, re-validating the operation's
// split invariants.
func (s *ScheduledTransaction) UpdateSplits(origin, destination []Split) error {
	prevOrigin, prevDest := s.originSplits, s.destinationSplits
	s.originSplits = append([]Split(nil), origin...)
	s.destinationSplits = append([]Split(nil), destination...)

	if err := s.validate(); err != nil {
		s.originSplits, s.destinationSplits = prevOrigin, prevDest
		return err
	}

	s.touch()
	return nil
}

// UpdateOperation changes the operation type, re-validating split shape.
func (s *ScheduledTransaction) UpdateOperation(op Operation) error {
	prev := s.operation
	s.operation = op

	if err := s.validate(); err != nil {
		s.operation = prev
		return err
	}

	s.touch()
	return nil
}

func (s *ScheduledTransaction) touch() {
	s.updatedAt = time.Now().UTC()
}

// OccurrenceInfo is the resolved view of one schedule occurrence: template
// fields overlaid with the matching modification's overrides. It is derived
// on demand and never persisted.
type OccurrenceInfo struct {
	ScheduleID        string
	OccurrenceIndex   int
	Date              DayDate
	State             OccurrenceState
	Name              string
	Operation         Operation
	Category          string
	SubCategory       string
	OriginSplits      []Split
	DestinationSplits []Split
	Store             string
	Tags              []string
}

// ResolveOccurrence combines the template with zero or one modification for
// the given occurrence index. Modification fields win field by field; fields
// not overridden fall back to template values.
func (s *ScheduledTransaction) ResolveOccurrence(index int, mod *RecurrenceModification) (*OccurrenceInfo, error) {
	date, ok := s.pattern.NthOccurrence(index)
	if !ok {
		return nil, fmt.Errorf("%w: schedule %s index %d", ErrOccurrenceOutOfRange, s.id, index)
	}

	info := &OccurrenceInfo{
		ScheduleID:        s.id,
		OccurrenceIndex:   index,
		Date:              date,
		State:             OccurrencePending,
		Name:              s.name,
		Operation:         s.operation,
		Category:          s.category,
		SubCategory:       s.subCategory,
		OriginSplits:      s.OriginSplits(),
		DestinationSplits: s.DestinationSplits(),
		Store:             s.store,
		Tags:              s.Tags(),
	}

	if mod != nil {
		info.State = mod.State()
		if d, ok := mod.DateOverride(); ok {
			info.Date = d
		}
		if origin, destination, ok := mod.SplitOverrides(); ok {
			info.OriginSplits = origin
			info.DestinationSplits = destination
		}
	}

	return info, nil
}
