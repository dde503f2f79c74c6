package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPercentage(t *testing.T) {
	tests := []struct {
		name    string
		value   decimal.Decimal
		wantErr bool
	}{
		{name: "zero", value: decimal.Zero},
		{name: "one", value: decimal.NewFromInt(1)},
		{name: "half", value: decimal.RequireFromString("0.5")},
		{name: "negative", value: decimal.RequireFromString("-0.01"), wantErr: true},
		{name: "above one", value: decimal.RequireFromString("1.0001"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPercentage(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPercentage)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Decimal().Equal(tt.value))
		})
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "50%", want: "0.5"},
		{input: "0.5", want: "0.5"},
		{input: "8%", want: "0.08"},
		{input: " 100% ", want: "1"},
		{input: "0", want: "0"},
		{input: "150%", wantErr: true},
		{input: "-5%", wantErr: true},
		{input: "half", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePercentage(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPercentage)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Decimal().Equal(decimal.RequireFromString(tt.want)), "got %s", p.Decimal())
		})
	}
}

func TestPercentage_String(t *testing.T) {
	assert.Equal(t, "50%", MustParsePercentage("0.5").String())
	assert.Equal(t, "8%", MustParsePercentage("8%").String())
	assert.Equal(t, "100%", OneHundredPercent.String())
	assert.Equal(t, "0%", ZeroPercent.String())
}

func TestPercentageFromInt(t *testing.T) {
	p, err := PercentageFromInt(50)
	require.NoError(t, err)
	assert.True(t, p.Equal(MustParsePercentage("0.5")))

	_, err = PercentageFromInt(101)
	assert.ErrorIs(t, err, ErrInvalidPercentage)
}

func TestPercentage_ValidationDoesNotMutateInput(t *testing.T) {
	input := decimal.RequireFromString("0.25")
	before := input.String()

	_, err := NewPercentage(input)
	require.NoError(t, err)
	_, err = NewPercentage(input)
	require.NoError(t, err)

	assert.Equal(t, before, input.String())
}
