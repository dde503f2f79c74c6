package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDining(t *testing.T, amount string) Dining {
	t.Helper()
	dining, err := NewDining(MustParseMonetaryAmount(amount), "1234123412341234", "1234567890",
		time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return dining
}

func TestBenefitPolicy_Calculate(t *testing.T) {
	account := &Account{Number: "123456789"}
	overrides := map[string]Percentage{"123456789": MustParsePercentage("12%")}

	tests := []struct {
		name    string
		policy  BenefitPolicy
		account *Account
		amount  string
		want    string
	}{
		{
			name:    "Fixed percentage",
			policy:  FixedPercentage(MustParsePercentage("8%")),
			account: account,
			amount:  "100.00",
			want:    "8.00",
		},
		{
			name:    "Fixed percentage rounds once half-up",
			policy:  FixedPercentage(MustParsePercentage("8%")),
			account: account,
			amount:  "12.34", // 0.9872
			want:    "0.99",
		},
		{
			name:    "Override applies to matching account",
			policy:  PercentageWithOverride(MustParsePercentage("8%"), overrides),
			account: account,
			amount:  "100.00",
			want:    "12.00",
		},
		{
			name:    "Override falls back to default rate",
			policy:  PercentageWithOverride(MustParsePercentage("8%"), overrides),
			account: &Account{Number: "987654321"},
			amount:  "100.00",
			want:    "8.00",
		},
		{
			name:    "No benefit",
			policy:  NoBenefit(),
			account: account,
			amount:  "100.00",
			want:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Calculate(tt.account, testDining(t, tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBenefitPolicy_Calculate_RejectsNonPositiveDining(t *testing.T) {
	policy := FixedPercentage(MustParsePercentage("8%"))

	_, err := policy.Calculate(&Account{Number: "123456789"}, Dining{Amount: ZeroAmount})

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBenefitPolicy_Calculate_UnknownKind(t *testing.T) {
	policy := BenefitPolicy{Kind: "BOGUS"}

	_, err := policy.Calculate(&Account{Number: "123456789"}, testDining(t, "100.00"))

	assert.Error(t, err)
	assert.Error(t, policy.Validate())
}

func TestRestaurant_CalculateBenefitFor_IsDeterministicAndPure(t *testing.T) {
	restaurant := &Restaurant{
		Number:       "1234567890",
		Name:         "AppleBees",
		Benefit:      FixedPercentage(MustParsePercentage("8%")),
		Availability: BenefitAvailabilityAlways,
	}
	account := newAccount(t, "Annabelle", "50%", "Corgan", "50%")
	dining := testDining(t, "100.00")

	first, err := restaurant.CalculateBenefitFor(account, dining)
	require.NoError(t, err)
	second, err := restaurant.CalculateBenefitFor(account, dining)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, "8.00", first.String())

	// Inputs are untouched
	assert.Equal(t, "100.00", dining.Amount.String())
	assert.True(t, account.TotalSavings().IsZero())
	assert.Len(t, account.Beneficiaries, 2)
}

func TestRestaurant_CalculateBenefitFor_Unavailable(t *testing.T) {
	restaurant := &Restaurant{
		Number:       "1234567890",
		Benefit:      FixedPercentage(MustParsePercentage("8%")),
		Availability: BenefitAvailabilityNever,
	}

	got, err := restaurant.CalculateBenefitFor(&Account{Number: "123456789"}, testDining(t, "100.00"))

	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRestaurant_Validate(t *testing.T) {
	valid := Restaurant{
		Number:       "1234567890",
		Benefit:      FixedPercentage(MustParsePercentage("8%")),
		Availability: BenefitAvailabilityAlways,
	}
	assert.NoError(t, valid.Validate())

	missingNumber := valid
	missingNumber.Number = ""
	assert.Error(t, missingNumber.Validate())

	badAvailability := valid
	badAvailability.Availability = "SOMETIMES"
	assert.Error(t, badAvailability.Validate())
}

func TestPercentageWithOverride_CopiesOverrides(t *testing.T) {
	overrides := map[string]Percentage{"123456789": MustParsePercentage("12%")}
	policy := PercentageWithOverride(MustParsePercentage("8%"), overrides)

	overrides["123456789"] = MustParsePercentage("50%")

	got, err := policy.Calculate(&Account{Number: "123456789"}, testDining(t, "100.00"))
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.String())
}

func TestNewDining(t *testing.T) {
	_, err := NewDining(ZeroAmount, "1234123412341234", "1234567890", time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewDining(MustParseMonetaryAmount("10.00"), "", "1234567890", time.Now())
	assert.ErrorIs(t, err, ErrInvalidDining)

	_, err = NewDining(MustParseMonetaryAmount("10.00"), "1234123412341234", " ", time.Now())
	assert.ErrorIs(t, err, ErrInvalidDining)

	dining, err := CreateDining("100.00", "1234123412341234", "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "100.00", dining.Amount.String())

	_, err = CreateDining("-3.00", "1234123412341234", "1234567890")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
