package domain

import "time"

// DayDate is a calendar date with the time-of-day truncated to midnight UTC.
// All recurrence math runs on DayDate so "days between" is always whole.
type DayDate struct {
	t time.Time
}

// NewDayDate truncates a timestamp to its calendar day.
func NewDayDate(t time.Time) DayDate {
	y, m, d := t.Date()
	return DayDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DayDateOf builds a date from its components.
func DayDateOf(year int, month time.Month, day int) DayDate {
	return DayDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Time returns the underlying midnight-UTC timestamp.
func (d DayDate) Time() time.Time {
	return d.t
}

// IsZero reports whether the date is the zero value.
func (d DayDate) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is strictly before other.
func (d DayDate) Before(other DayDate) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d DayDate) After(other DayDate) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates fall on the same day.
func (d DayDate) Equal(other DayDate) bool {
	return d.t.Equal(other.t)
}

// DaysUntil returns the whole number of days from d to other. Negative when
// other is in the past relative to d.
func (d DayDate) DaysUntil(other DayDate) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// AddMonthsClamped advances by whole years and months, clamping the day of
// month instead of rolling into the next month (Jan 31 + 1mo = Feb 29/28,
// never Mar 2).
func (d DayDate) AddMonthsClamped(years, months int) DayDate {
	y, m, day := d.t.Date()
	totalMonths := int(m) - 1 + years*12 + months
	targetYear := y + totalMonths/12
	targetMonth := time.Month(totalMonths%12 + 1)
	if totalMonths < 0 && totalMonths%12 != 0 {
		targetYear--
		targetMonth += 12
	}
	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return DayDateOf(targetYear, targetMonth, day)
}

// AddDays advances by whole days.
func (d DayDate) AddDays(days int) DayDate {
	return DayDate{t: d.t.AddDate(0, 0, days)}
}

// Format renders the date using the given layout.
func (d DayDate) Format(layout string) string {
	return d.t.Format(layout)
}

// String renders the date as YYYY-MM-DD.
func (d DayDate) String() string {
	return d.t.Format("2006-01-02")
}

// ParseDayDate parses a YYYY-MM-DD string.
func ParseDayDate(s string) (DayDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DayDate{}, err
	}
	return NewDayDate(t), nil
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
