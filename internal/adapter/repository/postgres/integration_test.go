//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/rewardnetwork-backend/internal/config"
	"github.com/simaogato/rewardnetwork-backend/internal/domain"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/reward"
)

var db *DB

// TestMain connects to the database named by DB_CONN_STR (or DB_HOST, DB_PORT...) and migrates it
func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err = NewDB(ctx, cfg.PostgresDSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := db.Migrate(ctx); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	code := m.Run()
	_ = db.Close()
	os.Exit(code)
}

// seedFixture creates an account with two 50% beneficiaries and an 8% restaurant.
// Identifiers are random so repeated runs never collide.
func seedFixture(t *testing.T, ctx context.Context) (*domain.Account, *domain.Restaurant) {
	t.Helper()
	suffix := uuid.NewString()[:8]

	account := &domain.Account{
		Number:           "acct-" + suffix,
		Name:             "Keith and Keri Donald",
		CreditCardNumber: "card-" + suffix,
	}
	require.NoError(t, account.AddBeneficiary("Annabelle", domain.MustParsePercentage("50%")))
	require.NoError(t, account.AddBeneficiary("Corgan", domain.MustParsePercentage("50%")))
	require.NoError(t, NewAccountRepository(db).CreateAccount(ctx, account))

	restaurant := &domain.Restaurant{
		Number:       "merch-" + suffix,
		Name:         "AppleBees",
		Benefit:      domain.FixedPercentage(domain.MustParsePercentage("8%")),
		Availability: domain.BenefitAvailabilityAlways,
	}
	require.NoError(t, NewRestaurantRepository(db).CreateRestaurant(ctx, restaurant))

	return account, restaurant
}

func TestRewardAccountFor_Postgres(t *testing.T) {
	ctx := context.Background()
	account, restaurant := seedFixture(t, ctx)

	accounts := NewAccountRepository(db)
	rewards := NewRewardRepository(db)
	service := reward.NewRewardService(accounts, NewRestaurantRepository(db), rewards)

	dining, err := domain.NewDining(domain.MustParseMonetaryAmount("100.00"), account.CreditCardNumber, restaurant.Number, time.Now().UTC())
	require.NoError(t, err)

	confirmation, err := service.RewardAccountFor(ctx, dining)
	require.NoError(t, err)
	require.NotEmpty(t, confirmation.ConfirmationNumber)
	assert.Equal(t, "8.00", confirmation.Contribution.Amount.String())

	reloaded, err := accounts.FindByCreditCard(ctx, account.CreditCardNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.Version)
	for _, b := range reloaded.Beneficiaries {
		assert.Equal(t, "4.00", b.Savings.String(), b.Name)
	}

	record, err := rewards.GetByConfirmationNumber(ctx, confirmation.ConfirmationNumber)
	require.NoError(t, err)
	assert.Equal(t, account.Number, record.AccountNumber)
	assert.Equal(t, "8.00", record.RewardAmount.String())
	assert.Equal(t, "100.00", record.DiningAmount.String())
}

func TestUpdateBeneficiaries_StaleVersion_Postgres(t *testing.T) {
	ctx := context.Background()
	account, _ := seedFixture(t, ctx)
	accounts := NewAccountRepository(db)

	first, err := accounts.FindByCreditCard(ctx, account.CreditCardNumber)
	require.NoError(t, err)
	second, err := accounts.FindByCreditCard(ctx, account.CreditCardNumber)
	require.NoError(t, err)

	_, err = first.MakeContribution(domain.MustParseMonetaryAmount("8.00"))
	require.NoError(t, err)
	require.NoError(t, accounts.UpdateBeneficiaries(ctx, first))

	_, err = second.MakeContribution(domain.MustParseMonetaryAmount("2.00"))
	require.NoError(t, err)
	err = accounts.UpdateBeneficiaries(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestLookups_NotFound_Postgres(t *testing.T) {
	ctx := context.Background()

	_, err := NewAccountRepository(db).FindByCreditCard(ctx, "no-such-card")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = NewRestaurantRepository(db).FindByMerchantNumber(ctx, "no-such-merchant")
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	_, err = NewRewardRepository(db).GetByConfirmationNumber(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRewardNotFound)
}

func TestPercentageWithOverride_Postgres(t *testing.T) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	restaurant := &domain.Restaurant{
		Number: "merch-ovr-" + suffix,
		Name:   "Override Diner",
		Benefit: domain.PercentageWithOverride(domain.MustParsePercentage("5%"), map[string]domain.Percentage{
			"123456789": domain.MustParsePercentage("10%"),
		}),
		Availability: domain.BenefitAvailabilityAlways,
	}
	repo := NewRestaurantRepository(db)
	require.NoError(t, repo.CreateRestaurant(ctx, restaurant))

	found, err := repo.FindByMerchantNumber(ctx, restaurant.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.BenefitKindPercentageWithOverride, found.Benefit.Kind)
	require.Contains(t, found.Benefit.Overrides, "123456789")
	assert.True(t, found.Benefit.Overrides["123456789"].Equal(domain.MustParsePercentage("10%")))
}
