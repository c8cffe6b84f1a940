package domain

import (
	"fmt"
	"time"
)

// OccurrenceState tracks what happened to a single schedule occurrence.
type OccurrenceState string

const (
	OccurrencePending   OccurrenceState = "pending"
	OccurrenceCompleted OccurrenceState = "completed"
	OccurrenceSkipped   OccurrenceState = "skipped"
	OccurrenceDeleted   OccurrenceState = "deleted"
)

// ValidOccurrenceState reports whether s is a known state.
func ValidOccurrenceState(s OccurrenceState) bool {
	switch s {
	case OccurrencePending, OccurrenceCompleted, OccurrenceSkipped, OccurrenceDeleted:
		return true
	}
	return false
}

// RecurrenceModification is a sparse per-occurrence override of a schedule.
// At most one exists per (schedule id, occurrence index); absence means the
// occurrence is pending with template-derived date and splits. The record is
// kept even for deleted occurrences so the override can be undone.
type RecurrenceModification struct {
	id                string
	scheduleID        string
	occurrenceIndex   int
	originalDate      DayDate
	state             OccurrenceState
	date              DayDate
	hasDate           bool
	originSplits      []Split
	destinationSplits []Split
	hasSplits         bool
	updatedAt         time.Time
}

// NewRecurrenceModification creates an override record for one occurrence,
// initially pending with no overrides.
func NewRecurrenceModification(id, scheduleID string, occurrenceIndex int, originalDate DayDate) (*RecurrenceModification, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("%w: schedule", ErrEmptyID)
	}
	if occurrenceIndex < 0 {
		return nil, fmt.Errorf("%w: index %d", ErrOccurrenceOutOfRange, occurrenceIndex)
	}

	return &RecurrenceModification{
		id:              id,
		scheduleID:      scheduleID,
		occurrenceIndex: occurrenceIndex,
		originalDate:    originalDate,
		state:           OccurrencePending,
		updatedAt:       time.Now().UTC(),
	}, nil
}

func (m *RecurrenceModification) ID() string             { return m.id }
func (m *RecurrenceModification) ScheduleID() string     { return m.scheduleID }
func (m *RecurrenceModification) OccurrenceIndex() int   { return m.occurrenceIndex }
func (m *RecurrenceModification) OriginalDate() DayDate  { return m.originalDate }
func (m *RecurrenceModification) State() OccurrenceState { return m.state }
func (m *RecurrenceModification) UpdatedAt() time.Time   { return m.updatedAt }

// DateOverride returns the rescheduled date and whether one is set.
func (m *RecurrenceModification) DateOverride() (DayDate, bool) {
	return m.date, m.hasDate
}

// SplitOverrides returns the overridden split lists and whether they are set.
func (m *RecurrenceModification) SplitOverrides() (origin, destination []Split, ok bool) {
	if !m.hasSplits {
		return nil, nil, false
	}
	return append([]Split(nil), m.originSplits...), append([]Split(nil), m.destinationSplits...), true
}

// Reschedule overrides the occurrence date.
func (m *RecurrenceModification) Reschedule(date DayDate) {
	m.date = date
	m.hasDate = true
	m.touch()
}

// Resplit overrides the occurrence's split lists.
func (m *RecurrenceModification) Resplit(origin, destination []Split) error {
	if err := validateSplits(origin); err != nil {
		return err
	}
	if err := validateSplits(destination); err != nil {
		return err
	}
	m.originSplits = append([]Split(nil), origin...)
	m.destinationSplits = append([]Split(nil), destination...)
	m.hasSplits = true
	m.touch()
	return nil
}

// MarkCompleted transitions pending -> completed, the state set when the
// occurrence materializes into a real transaction.
func (m *RecurrenceModification) MarkCompleted() error {
	return m.transitionFromPending(OccurrenceCompleted)
}

// MarkSkipped transitions pending -> skipped.
func (m *RecurrenceModification) MarkSkipped() error {
	return m.transitionFromPending(OccurrenceSkipped)
}

// MarkDeleted transitions pending -> deleted. The record survives so the
// deletion shows up in enumeration overlays and can be reset.
func (m *RecurrenceModification) MarkDeleted() error {
	return m.transitionFromPending(OccurrenceDeleted)
}

// Reset returns the occurrence to pending and clears all overrides,
// restoring template-derived behavior.
func (m *RecurrenceModification) Reset() {
	m.state = OccurrencePending
	m.date = DayDate{}
	m.hasDate = false
	m.originSplits = nil
	m.destinationSplits = nil
	m.hasSplits = false
	m.touch()
}

func (m *RecurrenceModification) transitionFromPending(target OccurrenceState) error {
	if m.state != OccurrencePending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateChange, m.state, target)
	}
	m.state = target
	m.touch()
	return nil
}

func (m *RecurrenceModification) touch() {
	m.updatedAt = time.Now().UTC()
}
