package domain

import (
	"fmt"
	"iter"
)

// PatternType discriminates the four recurrence shapes.
type PatternType string

const (
	PatternOneTime      PatternType = "one_time"
	PatternInfinite     PatternType = "infinite"
	PatternUntilDate    PatternType = "until_date"
	PatternNOccurrences PatternType = "n_occurrences"
)

// ValidPatternType reports whether t is a known pattern type.
func ValidPatternType(t PatternType) bool {
	switch t {
	case PatternOneTime, PatternInfinite, PatternUntilDate, PatternNOccurrences:
		return true
	}
	return false
}

// RecurrencePattern enumerates occurrence dates of a schedule. It is
// immutable after construction; every combination of optional fields is
// validated up front so enumeration never has to re-check.
type RecurrencePattern struct {
	patternType    PatternType
	startDate      DayDate
	frequency      Frequency
	hasFrequency   bool
	endDate        DayDate
	hasEndDate     bool
	maxOccurrences int
	hasMax         bool
}

// NewOneTimePattern builds a pattern with a single occurrence at start.
func NewOneTimePattern(start DayDate) (*RecurrencePattern, error) {
	return newPattern(PatternOneTime, start, nil, nil, nil)
}

// NewInfinitePattern builds an unbounded recurrence.
func NewInfinitePattern(start DayDate, freq Frequency) (*RecurrencePattern, error) {
	return newPattern(PatternInfinite, start, &freq, nil, nil)
}

// NewUntilDatePattern builds a recurrence bounded by an end date.
func NewUntilDatePattern(start DayDate, freq Frequency, end DayDate) (*RecurrencePattern, error) {
	return newPattern(PatternUntilDate, start, &freq, &end, nil)
}

// NewCountedPattern builds a recurrence bounded by an occurrence count.
func NewCountedPattern(start DayDate, freq Frequency, maxOccurrences int) (*RecurrencePattern, error) {
	return newPattern(PatternNOccurrences, start, &freq, nil, &maxOccurrences)
}

// NewRecurrencePattern builds a pattern from its primitive parts, validating
// the field combination for the given type.
func NewRecurrencePattern(t PatternType, start DayDate, freq *Frequency, end *DayDate, maxOccurrences *int) (*RecurrencePattern, error) {
	return newPattern(t, start, freq, end, maxOccurrences)
}

func newPattern(t PatternType, start DayDate, freq *Frequency, end *DayDate, maxOccurrences *int) (*RecurrencePattern, error) {
	if !ValidPatternType(t) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRecurrence, t)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidRecurrence)
	}

	switch t {
	case PatternOneTime:
		if freq != nil || end != nil || maxOccurrences != nil {
			return nil, fmt.Errorf("%w: one-time forbids frequency, end date and max occurrences", ErrInvalidRecurrence)
		}
	case PatternInfinite:
		if freq == nil {
			return nil, fmt.Errorf("%w: infinite requires a frequency", ErrInvalidRecurrence)
		}
		if end != nil || maxOccurrences != nil {
			return nil, fmt.Errorf("%w: infinite forbids end date and max occurrences", ErrInvalidRecurrence)
		}
	case PatternUntilDate:
		if freq == nil || end == nil {
			return nil, fmt.Errorf("%w: until-date requires frequency and end date", ErrInvalidRecurrence)
		}
		if maxOccurrences != nil {
			return nil, fmt.Errorf("%w: until-date forbids max occurrences", ErrInvalidRecurrence)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidRecurrence)
		}
	case PatternNOccurrences:
		if freq == nil || maxOccurrences == nil {
			return nil, fmt.Errorf("%w: n-occurrences requires frequency and max occurrences", ErrInvalidRecurrence)
		}
		if end != nil {
			return nil, fmt.Errorf("%w: n-occurrences forbids end date", ErrInvalidRecurrence)
		}
		if *maxOccurrences <= 0 {
			return nil, fmt.Errorf("%w: max occurrences must be positive", ErrInvalidRecurrence)
		}
	}

	p := &RecurrencePattern{
		patternType: t,
		startDate:   start,
	}
	if freq != nil {
		if freq.IsZero() {
			return nil, fmt.Errorf("%w: frequency must not be zero", ErrInvalidRecurrence)
		}
		p.frequency = *freq
		p.hasFrequency = true
	}
	if end != nil {
		p.endDate = *end
		p.hasEndDate = true
	}
	if maxOccurrences != nil {
		p.maxOccurrences = *maxOccurrences
		p.hasMax = true
	}

	return p, nil
}

// Type returns the pattern type.
func (p *RecurrencePattern) Type() PatternType {
	return p.patternType
}

// StartDate returns the first occurrence date.
func (p *RecurrencePattern) StartDate() DayDate {
	return p.startDate
}

// Frequency returns the step and whether one is set.
func (p *RecurrencePattern) Frequency() (Frequency, bool) {
	return p.frequency, p.hasFrequency
}

// EndDate returns the inclusive end bound and whether one is set.
func (p *RecurrencePattern) EndDate() (DayDate, bool) {
	return p.endDate, p.hasEndDate
}

// MaxOccurrences returns the occurrence cap and whether one is set.
func (p *RecurrencePattern) MaxOccurrences() (int, bool) {
	return p.maxOccurrences, p.hasMax
}

// OccurrencesUntil lazily yields occurrence dates up to and including bound.
// End date and max occurrences are hard stops. A one-time pattern yields at
// most its start date.
func (p *RecurrencePattern) OccurrencesUntil(bound DayDate) iter.Seq[DayDate] {
	return func(yield func(DayDate) bool) {
		date := p.startDate
		for count := 0; !date.After(bound); count++ {
			if p.hasMax && count >= p.maxOccurrences {
				return
			}
			if p.hasEndDate && date.After(p.endDate) {
				return
			}
			if !yield(date) {
				return
			}
			if !p.hasFrequency {
				// One-time patterns never loop.
				return
			}
			date = p.frequency.Next(date)
		}
	}
}

// NthOccurrence returns the date of the 0-based occurrence index n. The
// second return is false when n falls outside the pattern's bounds.
func (p *RecurrencePattern) NthOccurrence(n int) (DayDate, bool) {
	if n < 0 {
		return DayDate{}, false
	}
	if !p.hasFrequency {
		if n == 0 {
			return p.startDate, true
		}
		return DayDate{}, false
	}
	if p.hasMax && n >= p.maxOccurrences {
		return DayDate{}, false
	}

	date := p.startDate
	for i := 0; i < n; i++ {
		date = p.frequency.Next(date)
	}
	if p.hasEndDate && date.After(p.endDate) {
		return DayDate{}, false
	}
	return date, true
}

// TotalOccurrences returns the number of occurrences and whether the pattern
// is bounded at all. Infinite patterns report (0, false).
func (p *RecurrencePattern) TotalOccurrences() (int, bool) {
	switch p.patternType {
	case PatternOneTime:
		return 1, true
	case PatternNOccurrences:
		return p.maxOccurrences, true
	case PatternUntilDate:
		count := 0
		for range p.OccurrencesUntil(p.endDate) {
			count++
		}
		return count, true
	default:
		return 0, false
	}
}

// MonthlyFrequencyFactor normalizes the pattern to a per-calendar-month
// figure. A one-time pattern contributes its full amount once, so its factor
// is 1 rather than 0.
func (p *RecurrencePattern) MonthlyFrequencyFactor() float64 {
	if !p.hasFrequency {
		return 1
	}
	return MonthDays / p.frequency.ToNumberOfDays()
}
