package seeder

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

//go:embed default.yaml
var defaultFixture []byte

// BeneficiaryFixture describes a beneficiary in a fixture file
type BeneficiaryFixture struct {
	Name       string `yaml:"name"`
	Allocation string `yaml:"allocation"`        // "50%" or "0.5"
	Savings    string `yaml:"savings,omitempty"` // Defaults to 0.00
}

// AccountFixture describes an account in a fixture file
type AccountFixture struct {
	Number        string               `yaml:"number"`
	Name          string               `yaml:"name"`
	CreditCard    string               `yaml:"creditCard"`
	Beneficiaries []BeneficiaryFixture `yaml:"beneficiaries"`
}

// BenefitFixture describes a restaurant benefit policy
type BenefitFixture struct {
	Kind       string            `yaml:"kind"`
	Percentage string            `yaml:"percentage"`
	Overrides  map[string]string `yaml:"overrides,omitempty"` // account number -> percentage
}

// RestaurantFixture describes a restaurant in a fixture file
type RestaurantFixture struct {
	MerchantNumber string         `yaml:"merchantNumber"`
	Name           string         `yaml:"name"`
	Availability   string         `yaml:"availability"`
	Benefit        BenefitFixture `yaml:"benefit"`
}

// Fixture is the reward network data loaded by the seeder
type Fixture struct {
	Accounts    []AccountFixture    `yaml:"accounts"`
	Restaurants []RestaurantFixture `yaml:"restaurants"`
}

// DefaultFixture returns the built-in test data set
func DefaultFixture() (*Fixture, error) {
	return decode(defaultFixture)
}

// LoadFixture reads a YAML fixture
func LoadFixture(r io.Reader) (*Fixture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return decode(data)
}

// LoadFixtureFile reads a YAML fixture from path
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(f)
}

func decode(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fixture, nil
}

// Seeder loads fixture accounts and restaurants into a store
type Seeder struct {
	store  domain.Seedable
	logger *slog.Logger
}

// NewSeeder creates a new Seeder instance
func NewSeeder(store domain.Seedable, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		store:  store,
		logger: logger,
	}
}

// Seed ensures every fixture account and restaurant exists in the store
// Records that already exist are left untouched, so seeding twice is harmless.
func (s *Seeder) Seed(ctx context.Context, fixture *Fixture) error {
	created := 0
	for _, af := range fixture.Accounts {
		// Try to get the account by credit card
		_, err := s.store.FindByCreditCard(ctx, af.CreditCard)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("failed to look up account %s: %w", af.Number, err)
		}

		// Account doesn't exist, create it
		account, err := af.toAccount()
		if err != nil {
			return err
		}
		if err := s.store.CreateAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to create account %s: %w", af.Number, err)
		}
		created++
	}

	for _, rf := range fixture.Restaurants {
		_, err := s.store.FindByMerchantNumber(ctx, rf.MerchantNumber)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRestaurantNotFound) {
			return fmt.Errorf("failed to look up restaurant %s: %w", rf.MerchantNumber, err)
		}

		restaurant, err := rf.toRestaurant()
		if err != nil {
			return err
		}
		if err := s.store.CreateRestaurant(ctx, restaurant); err != nil {
			return fmt.Errorf("failed to create restaurant %s: %w", rf.MerchantNumber, err)
		}
		created++
	}

	s.logger.InfoContext(ctx, "seed data loaded",
		slog.Int("accounts", len(fixture.Accounts)),
		slog.Int("restaurants", len(fixture.Restaurants)),
		slog.Int("created", created),
	)
	return nil
}

func (af AccountFixture) toAccount() (*domain.Account, error) {
	account := &domain.Account{
		Number:           af.Number,
		Name:             af.Name,
		CreditCardNumber: af.CreditCard,
	}
	for _, bf := range af.Beneficiaries {
		pct, err := domain.ParsePercentage(bf.Allocation)
		if err != nil {
			return nil, fmt.Errorf("account %s beneficiary %s: %w", af.Number, bf.Name, err)
		}
		if err := account.AddBeneficiary(bf.Name, pct); err != nil {
			return nil, fmt.Errorf("account %s: %w", af.Number, err)
		}
		if bf.Savings != "" {
			savings, err := domain.ParseMonetaryAmount(bf.Savings)
			if err != nil {
				return nil, fmt.Errorf("account %s beneficiary %s savings: %w", af.Number, bf.Name, err)
			}
			account.Beneficiaries[len(account.Beneficiaries)-1].Savings = savings
		}
	}

	// Validate before creating
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("account %s: %w", af.Number, err)
	}
	return account, nil
}

func (rf RestaurantFixture) toRestaurant() (*domain.Restaurant, error) {
	var policy domain.BenefitPolicy
	switch domain.BenefitKind(rf.Benefit.Kind) {
	case domain.BenefitKindNone:
		policy = domain.NoBenefit()
	case domain.BenefitKindFixedPercentage, domain.BenefitKindPercentageWithOverride:
		rate, err := domain.ParsePercentage(rf.Benefit.Percentage)
		if err != nil {
			return nil, fmt.Errorf("restaurant %s: %w", rf.MerchantNumber, err)
		}
		if domain.BenefitKind(rf.Benefit.Kind) == domain.BenefitKindFixedPercentage {
			policy = domain.FixedPercentage(rate)
			break
		}
		overrides := make(map[string]domain.Percentage, len(rf.Benefit.Overrides))
		for accountNumber, raw := range rf.Benefit.Overrides {
			pct, err := domain.ParsePercentage(raw)
			if err != nil {
				return nil, fmt.Errorf("restaurant %s override for %s: %w", rf.MerchantNumber, accountNumber, err)
			}
			overrides[accountNumber] = pct
		}
		policy = domain.PercentageWithOverride(rate, overrides)
	default:
		return nil, fmt.Errorf("restaurant %s: unknown benefit kind %q", rf.MerchantNumber, rf.Benefit.Kind)
	}

	availability := domain.BenefitAvailability(rf.Availability)
	if availability == "" {
		availability = domain.BenefitAvailabilityAlways
	}
	restaurant := &domain.Restaurant{
		Number:       rf.MerchantNumber,
		Name:         rf.Name,
		Benefit:      policy,
		Availability: availability,
	}
	if err := restaurant.Validate(); err != nil {
		return nil, fmt.Errorf("restaurant %s: %w", rf.MerchantNumber, err)
	}
	return restaurant, nil
}
