// Package memory provides in-memory repositories for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store implements domain.AccountRepository, domain.RestaurantRepository and
// domain.RewardRepository over maps guarded by a single lock.
// Accounts are deep-copied on the way in and out, so callers never share state with the store.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*domain.Account // keyed by credit card number
	restaurants map[string]*domain.Restaurant
	rewards     map[string]domain.RewardRecord
	now         func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*domain.Account),
		restaurants: make(map[string]*domain.Restaurant),
		rewards:     make(map[string]domain.RewardRecord),
		now:         time.Now,
	}
}

// CreateAccount stores a new account
func (s *Store) CreateAccount(_ context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.CreditCardNumber]; exists {
		return fmt.Errorf("account with credit card %s already exists", account.CreditCardNumber)
	}
	stored := account.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		account.ID = stored.ID
	}
	s.accounts[account.CreditCardNumber] = stored
	return nil
}

// FindByCreditCard retrieves a copy of the account linked to a credit card
func (s *Store) FindByCreditCard(_ context.Context, creditCardNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[creditCardNumber]
	if !ok {
		return nil, fmt.Errorf("%w: no account for credit card %s", domain.ErrAccountNotFound, creditCardNumber)
	}
	return account.Clone(), nil
}

// UpdateBeneficiaries saves beneficiary savings if the account version is current
func (s *Store) UpdateBeneficiaries(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.CreditCardNumber]
	if !ok {
		return fmt.Errorf("%w: no account for credit card %s", domain.ErrAccountNotFound, account.CreditCardNumber)
	}
	if stored.Version != account.Version {
		return fmt.Errorf("%w: account %s is at version %d, update based on %d",
			domain.ErrConcurrentModification, account.Number, stored.Version, account.Version)
	}

	updated := stored.Clone()
	for _, b := range account.Beneficiaries {
		found := false
		for i := range updated.Beneficiaries {
			if updated.Beneficiaries[i].Name == b.Name {
				updated.Beneficiaries[i].Savings = b.Savings
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("beneficiary %q not found on account %s", b.Name, account.Number)
		}
	}
	updated.Version++
	s.accounts[account.CreditCardNumber] = updated
	account.Version = updated.Version
	return nil
}

// CreateRestaurant stores a new restaurant
func (s *Store) CreateRestaurant(_ context.Context, restaurant *domain.Restaurant) error {
	if err := restaurant.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.restaurants[restaurant.Number]; exists {
		return fmt.Errorf("restaurant %s already exists", restaurant.Number)
	}
	stored := *restaurant
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		restaurant.ID = stored.ID
	}
	stored.Benefit = copyPolicy(restaurant.Benefit)
	s.restaurants[restaurant.Number] = &stored
	return nil
}

// FindByMerchantNumber retrieves a copy of a restaurant by merchant number
func (s *Store) FindByMerchantNumber(_ context.Context, merchantNumber string) (*domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restaurant, ok := s.restaurants[merchantNumber]
	if !ok {
		return nil, fmt.Errorf("%w: no restaurant for merchant number %s", domain.ErrRestaurantNotFound, merchantNumber)
	}
	copied := *restaurant
	copied.Benefit = copyPolicy(restaurant.Benefit)
	return &copied, nil
}

// ConfirmReward records the contribution under a new confirmation number
func (s *Store) ConfirmReward(_ context.Context, contribution *domain.AccountContribution, dining domain.Dining) (*domain.RewardConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmationNumber := uuid.NewString()
	s.rewards[confirmationNumber] = domain.RewardRecord{
		ConfirmationNumber: confirmationNumber,
		AccountNumber:      contribution.AccountNumber,
		RewardAmount:       contribution.Amount,
		RewardDate:         s.now().UTC(),
		MerchantNumber:     dining.MerchantNumber,
		DiningAmount:       dining.Amount,
		DiningDate:         dining.Date,
	}

	return &domain.RewardConfirmation{
		ConfirmationNumber: confirmationNumber,
		Contribution:       contribution,
	}, nil
}

// GetByConfirmationNumber retrieves a recorded reward
func (s *Store) GetByConfirmationNumber(_ context.Context, confirmationNumber string) (*domain.RewardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.rewards[confirmationNumber]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRewardNotFound, confirmationNumber)
	}
	return &record, nil
}

func copyPolicy(p domain.BenefitPolicy) domain.BenefitPolicy {
	if p.Overrides == nil {
		return p
	}
	overrides := make(map[string]domain.Percentage, len(p.Overrides))
	for k, v := range p.Overrides {
		overrides[k] = v
	}
	p.Overrides = overrides
	return p
}
