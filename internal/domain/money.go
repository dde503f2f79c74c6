package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of fractional digits kept for every MonetaryAmount.
const CurrencyScale int32 = 2

// MonetaryAmount represents an exact currency value with two fractional digits.
// Values are immutable: every operation returns a new MonetaryAmount.
type MonetaryAmount struct {
	value decimal.Decimal
}

// ZeroAmount is the zero MonetaryAmount
var ZeroAmount = MonetaryAmount{value: decimal.Zero}

// NewMonetaryAmount creates a MonetaryAmount from a decimal value
// Rounds half-up to CurrencyScale
func NewMonetaryAmount(value decimal.Decimal) MonetaryAmount {
	return MonetaryAmount{value: value.Round(CurrencyScale)}
}

// ParseMonetaryAmount parses a decimal string such as "100.00"
// Returns ErrInvalidAmount if the string is malformed or carries more than two fractional digits
func ParseMonetaryAmount(s string) (MonetaryAmount, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return MonetaryAmount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if value.Exponent() < -CurrencyScale && !value.Equal(value.Round(CurrencyScale)) {
		return MonetaryAmount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, CurrencyScale)
	}
	return NewMonetaryAmount(value), nil
}

// MustParseMonetaryAmount is like ParseMonetaryAmount but panics on error.
// Intended for fixtures and tests.
func MustParseMonetaryAmount(s string) MonetaryAmount {
	amount, err := ParseMonetaryAmount(s)
	if err != nil {
		panic(err)
	}
	return amount
}

// Add returns m + other
func (m MonetaryAmount) Add(other MonetaryAmount) MonetaryAmount {
	return MonetaryAmount{value: m.value.Add(other.value)}
}

// Sub returns m - other
func (m MonetaryAmount) Sub(other MonetaryAmount) MonetaryAmount {
	return MonetaryAmount{value: m.value.Sub(other.value)}
}

// MultiplyBy returns m scaled by the given percentage, rounded half-up once to CurrencyScale
func (m MonetaryAmount) MultiplyBy(p Percentage) MonetaryAmount {
	return NewMonetaryAmount(m.value.Mul(p.Decimal()))
}

// Equal reports whether both amounts hold the same value
func (m MonetaryAmount) Equal(other MonetaryAmount) bool {
	return m.value.Equal(other.value)
}

// GreaterThan reports whether m > other
func (m MonetaryAmount) GreaterThan(other MonetaryAmount) bool {
	return m.value.GreaterThan(other.value)
}

// IsZero reports whether the amount is exactly zero
func (m MonetaryAmount) IsZero() bool {
	return m.value.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero
func (m MonetaryAmount) IsPositive() bool {
	return m.value.IsPositive()
}

// IsNegative reports whether the amount is strictly less than zero
func (m MonetaryAmount) IsNegative() bool {
	return m.value.IsNegative()
}

// Decimal exposes the underlying decimal value
func (m MonetaryAmount) Decimal() decimal.Decimal {
	return m.value
}

// String formats the amount with exactly two fractional digits ("8.00")
func (m MonetaryAmount) String() string {
	return m.value.StringFixed(CurrencyScale)
}
