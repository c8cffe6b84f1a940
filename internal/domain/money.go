package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a decimal-safe signed amount. Arithmetic stays on this type so
// every amount in the ledger went through NewMoney or MoneyFromString.
type Money struct {
	value decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{value: decimal.Zero}

// NewMoney wraps a decimal value.
func NewMoney(value decimal.Decimal) Money {
	return Money{value: value}
}

// MoneyFromString parses a decimal string.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{value: d}, nil
}

// MoneyFromFloat converts a float. Only for display-layer input; persisted
// amounts always travel as strings.
func MoneyFromFloat(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{value: m.value.Add(other.value)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{value: m.value.Sub(other.value)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{value: m.value.Neg()}
}

// Mul returns m * factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{value: m.value.Mul(factor)}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	return Money{value: m.value.Abs()}
}

// Cmp returns -1, 0 or 1 comparing m to other.
func (m Money) Cmp(other Money) int {
	return m.value.Cmp(other.value)
}

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.value.Equal(other.value)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.value.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.value.IsPositive()
}

// Decimal exposes the underlying decimal for adapters that persist it.
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// String renders the amount without trailing zeros.
func (m Money) String() string {
	return m.value.String()
}
