package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonetaryAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "two fractional digits", input: "100.00", want: "100.00"},
		{name: "whole number", input: "8", want: "8.00"},
		{name: "one fractional digit", input: "3.5", want: "3.50"},
		{name: "trailing zeros beyond scale", input: "1.500", want: "1.50"},
		{name: "more than two fractional digits", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonetaryAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMonetaryAmount_MultiplyBy_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"100.00", "8%", "8.00"},
		{"0.05", "50%", "0.03"},     // 0.025 -> 0.03
		{"0.05", "10%", "0.01"},     // 0.005 -> 0.01
		{"0.04", "10%", "0.00"},     // 0.004 -> 0.00
		{"10.00", "0.3333", "3.33"}, // 3.333 -> 3.33
		{"33.33", "100%", "33.33"},
		{"99.99", "0%", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"x"+tt.rate, func(t *testing.T) {
			got := MustParseMonetaryAmount(tt.amount).MultiplyBy(MustParsePercentage(tt.rate))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMonetaryAmount_Arithmetic(t *testing.T) {
	a := MustParseMonetaryAmount("4.00")
	b := MustParseMonetaryAmount("3.33")

	assert.True(t, a.Add(b).Equal(MustParseMonetaryAmount("7.33")))
	assert.True(t, a.Sub(b).Equal(MustParseMonetaryAmount("0.67")))
	assert.True(t, b.Sub(a).IsNegative())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, ZeroAmount.IsZero())
	assert.False(t, ZeroAmount.IsPositive())

	// Operations return new values
	assert.Equal(t, "4.00", a.String())
	assert.Equal(t, "3.33", b.String())
}

func TestNewMonetaryAmount_RoundsToScale(t *testing.T) {
	got := NewMonetaryAmount(decimal.RequireFromString("2.345"))
	assert.Equal(t, "2.35", got.String())
	assert.True(t, got.Decimal().Equal(decimal.RequireFromString("2.35")))
}

func TestMustParseMonetaryAmount_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseMonetaryAmount("twelve") })
}
