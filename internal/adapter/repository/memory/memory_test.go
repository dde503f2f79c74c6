package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	ctx := context.Background()

	account := &domain.Account{Number: "123456789", Name: "Keith and Keri Donald", CreditCardNumber: "1234123412341234"}
	require.NoError(t, account.AddBeneficiary("Annabelle", domain.MustParsePercentage("50%")))
	require.NoError(t, account.AddBeneficiary("Corgan", domain.MustParsePercentage("50%")))
	require.NoError(t, store.CreateAccount(ctx, account))

	restaurant := &domain.Restaurant{
		Number:       "1234567890",
		Name:         "AppleBees",
		Benefit:      domain.FixedPercentage(domain.MustParsePercentage("8%")),
		Availability: domain.BenefitAvailabilityAlways,
	}
	require.NoError(t, store.CreateRestaurant(ctx, restaurant))
	return store
}

func TestStore_FindByCreditCard(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	account, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	assert.Equal(t, "123456789", account.Number)
	assert.Len(t, account.Beneficiaries, 2)
	assert.NotEqual(t, uuid.Nil, account.ID)

	_, err = store.FindByCreditCard(ctx, "0000000000000000")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestStore_FindReturnsCopies(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	first, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	first.Beneficiaries[0].Savings = domain.MustParseMonetaryAmount("99.00")

	second, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	assert.True(t, second.Beneficiaries[0].Savings.IsZero())
}

func TestStore_UpdateBeneficiaries(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	account, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	_, err = account.MakeContribution(domain.MustParseMonetaryAmount("8.00"))
	require.NoError(t, err)

	require.NoError(t, store.UpdateBeneficiaries(ctx, account))
	assert.Equal(t, int64(1), account.Version)

	reloaded, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	annabelle, _ := reloaded.Beneficiary("Annabelle")
	corgan, _ := reloaded.Beneficiary("Corgan")
	assert.Equal(t, "4.00", annabelle.Savings.String())
	assert.Equal(t, "4.00", corgan.Savings.String())
	assert.Equal(t, int64(1), reloaded.Version)
}

func TestStore_UpdateBeneficiaries_StaleVersion(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	first, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	second, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)

	_, err = first.MakeContribution(domain.MustParseMonetaryAmount("8.00"))
	require.NoError(t, err)
	require.NoError(t, store.UpdateBeneficiaries(ctx, first))

	_, err = second.MakeContribution(domain.MustParseMonetaryAmount("2.00"))
	require.NoError(t, err)
	err = store.UpdateBeneficiaries(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	reloaded, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	assert.Equal(t, "8.00", reloaded.TotalSavings().String())
}

func TestStore_UpdateBeneficiaries_UnknownAccount(t *testing.T) {
	store := NewStore()
	err := store.UpdateBeneficiaries(context.Background(), &domain.Account{Number: "1", CreditCardNumber: "42"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestStore_CreateAccount_Rejects(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	duplicate := &domain.Account{Number: "987654321", CreditCardNumber: "1234123412341234"}
	assert.Error(t, store.CreateAccount(ctx, duplicate))

	invalid := &domain.Account{Number: "555", CreditCardNumber: "5555"}
	require.NoError(t, invalid.AddBeneficiary("Solo", domain.MustParsePercentage("90%")))
	err := store.CreateAccount(ctx, invalid)
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}

func TestStore_FindByMerchantNumber(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	restaurant, err := store.FindByMerchantNumber(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "AppleBees", restaurant.Name)
	assert.Equal(t, domain.BenefitKindFixedPercentage, restaurant.Benefit.Kind)

	_, err = store.FindByMerchantNumber(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)
}

func TestStore_ConfirmReward(t *testing.T) {
	store := seededStore(t)
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	dining, err := domain.NewDining(domain.MustParseMonetaryAmount("100.00"), "1234123412341234", "1234567890", fixed)
	require.NoError(t, err)
	contribution := &domain.AccountContribution{AccountNumber: "123456789", Amount: domain.MustParseMonetaryAmount("8.00")}

	first, err := store.ConfirmReward(ctx, contribution, dining)
	require.NoError(t, err)
	second, err := store.ConfirmReward(ctx, contribution, dining)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ConfirmationNumber)
	assert.NotEqual(t, first.ConfirmationNumber, second.ConfirmationNumber)
	assert.Same(t, contribution, first.Contribution)

	record, err := store.GetByConfirmationNumber(ctx, first.ConfirmationNumber)
	require.NoError(t, err)
	assert.Equal(t, "123456789", record.AccountNumber)
	assert.Equal(t, "8.00", record.RewardAmount.String())
	assert.Equal(t, "100.00", record.DiningAmount.String())
	assert.Equal(t, "1234567890", record.MerchantNumber)
	assert.Equal(t, fixed, record.RewardDate)

	_, err = store.GetByConfirmationNumber(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRewardNotFound)
}

func TestStore_ConcurrentUpdatesNeverLoseSavings(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				account, err := store.FindByCreditCard(ctx, "1234123412341234")
				if err != nil {
					t.Error(err)
					return
				}
				if _, err := account.MakeContribution(domain.MustParseMonetaryAmount("1.00")); err != nil {
					t.Error(err)
					return
				}
				err = store.UpdateBeneficiaries(ctx, account)
				if err == nil {
					return
				}
				if !assert.ErrorIs(t, err, domain.ErrConcurrentModification) {
					return
				}
			}
		}()
	}
	wg.Wait()

	account, err := store.FindByCreditCard(ctx, "1234123412341234")
	require.NoError(t, err)
	assert.Equal(t, "20.00", account.TotalSavings().String())
	assert.Equal(t, int64(workers), account.Version)
}
