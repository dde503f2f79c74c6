package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// Percentage is an immutable fraction in the closed range [0, 1].
// 0.08 means 8%. Used for benefit rates and beneficiary allocation shares.
type Percentage struct {
	value decimal.Decimal
}

// ZeroPercent and OneHundredPercent are the bounds of a Percentage
var (
	ZeroPercent       = Percentage{value: decimal.Zero}
	OneHundredPercent = Percentage{value: one}
)

// NewPercentage creates a Percentage from a fraction
// Returns ErrInvalidPercentage if value is outside [0, 1]
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() || value.GreaterThan(one) {
		return Percentage{}, fmt.Errorf("%w: %s is outside [0, 1]", ErrInvalidPercentage, value.String())
	}
	return Percentage{value: value}, nil
}

// PercentageFromInt creates a Percentage from a whole number of percent (50 -> 0.50)
func PercentageFromInt(percent int64) (Percentage, error) {
	return NewPercentage(decimal.NewFromInt(percent).Div(oneHundred))
}

// ParsePercentage accepts either a fraction ("0.5") or a percent string ("50%")
func ParsePercentage(s string) (Percentage, error) {
	trimmed := strings.TrimSpace(s)
	isPercent := strings.HasSuffix(trimmed, "%")
	trimmed = strings.TrimSuffix(trimmed, "%")

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Percentage{}, fmt.Errorf("%w: %q", ErrInvalidPercentage, s)
	}
	if isPercent {
		value = value.Div(oneHundred)
	}
	return NewPercentage(value)
}

// MustParsePercentage is like ParsePercentage but panics on error.
// Intended for fixtures and tests.
func MustParsePercentage(s string) Percentage {
	p, err := ParsePercentage(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Equal reports whether both percentages hold the same fraction
func (p Percentage) Equal(other Percentage) bool {
	return p.value.Equal(other.value)
}

// IsZero reports whether the percentage is 0%
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// Decimal exposes the fraction as a decimal
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

// String formats the percentage as "50%"
func (p Percentage) String() string {
	return p.value.Mul(oneHundred).String() + "%"
}
