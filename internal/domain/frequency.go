package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// MonthDays is the average number of days per calendar month, used to
// normalize any frequency to a per-month figure.
const MonthDays = 30.4167

// Frequency is a recurrence step parsed from the compact token grammar
// (\d*y)?(\d*mo)?(\d*w)?(\d*d)?, e.g. "1mo", "2w", "1y6mo". Weeks fold into
// days at parse time.
type Frequency struct {
	Years  int
	Months int
	Days   int

	raw string
}

var frequencyRegex = regexp.MustCompile(`^(?:(\d*)(y))?(?:(\d*)(mo))?(?:(\d*)(w))?(?:(\d*)(d))?$`)

// ParseFrequency parses a frequency token. A unit without a leading number
// counts as one of that unit ("mo" == "1mo").
func ParseFrequency(token string) (Frequency, error) {
	if token == "" {
		return Frequency{}, fmt.Errorf("%w: empty token", ErrInvalidFrequency)
	}

	match := frequencyRegex.FindStringSubmatch(token)
	if match == nil {
		return Frequency{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, token)
	}

	years := unitCount(match[1], match[2])
	months := unitCount(match[3], match[4])
	weeks := unitCount(match[5], match[6])
	days := unitCount(match[7], match[8])

	f := Frequency{
		Years:  years,
		Months: months,
		Days:   days + weeks*7,
		raw:    token,
	}

	// The regex also matches the empty string, so an all-absent token lands
	// here rather than failing the match.
	if f.Years == 0 && f.Months == 0 && f.Days == 0 {
		return Frequency{}, fmt.Errorf("%w: %q resolves to zero interval", ErrInvalidFrequency, token)
	}

	return f, nil
}

// MustParseFrequency is ParseFrequency that panics on error, for literals in
// tests and fixtures.
func MustParseFrequency(token string) Frequency {
	f, err := ParseFrequency(token)
	if err != nil {
		panic(err)
	}
	return f
}

// ToNumberOfDays converts the step to an approximate day count, months
// weighted by the average month length.
func (f Frequency) ToNumberOfDays() float64 {
	return float64(f.Years)*365 + float64(f.Months)*MonthDays + float64(f.Days)
}

// Next returns the occurrence date following d. Years and months step with
// calendar-aware clamping, days are exact.
func (f Frequency) Next(d DayDate) DayDate {
	return d.AddMonthsClamped(f.Years, f.Months).AddDays(f.Days)
}

// IsZero reports whether the frequency was never set.
func (f Frequency) IsZero() bool {
	return f.Years == 0 && f.Months == 0 && f.Days == 0
}

// String returns the original token.
func (f Frequency) String() string {
	return f.raw
}

// unitCount interprets one captured (digits, suffix) pair. A suffix that did
// not match contributes zero; a bare suffix counts as one.
func unitCount(digits, suffix string) int {
	if suffix == "" {
		return 0
	}
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
