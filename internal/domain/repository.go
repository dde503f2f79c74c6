package domain

import (
	"context"
	"time"
)

// AccountFinder looks up accounts
type AccountFinder interface {
	// FindByCreditCard retrieves the account a credit card is linked to
	// Returns an error wrapping ErrAccountNotFound if no account matches
	FindByCreditCard(ctx context.Context, creditCardNumber string) (*Account, error)
}

// AccountPersister saves account state changed by a contribution
type AccountPersister interface {
	// UpdateBeneficiaries persists the savings of every beneficiary of the account
	// The save is atomic; a stale Version fails with ErrConcurrentModification
	UpdateBeneficiaries(ctx context.Context, account *Account) error
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	AccountFinder
	AccountPersister

	// CreateAccount stores a new account together with its beneficiaries
	CreateAccount(ctx context.Context, account *Account) error
}

// RestaurantFinder looks up restaurants
type RestaurantFinder interface {
	// FindByMerchantNumber retrieves a restaurant by its merchant number
	// Returns an error wrapping ErrRestaurantNotFound if no restaurant matches
	FindByMerchantNumber(ctx context.Context, merchantNumber string) (*Restaurant, error)
}

// RestaurantRepository defines the interface for restaurant persistence operations
type RestaurantRepository interface {
	RestaurantFinder

	// CreateRestaurant stores a new restaurant
	CreateRestaurant(ctx context.Context, restaurant *Restaurant) error
}

// ConfirmationRecorder records successful contributions
type ConfirmationRecorder interface {
	// ConfirmReward records the contribution made for dining and returns a confirmation
	// carrying a new, unique confirmation number
	ConfirmReward(ctx context.Context, contribution *AccountContribution, dining Dining) (*RewardConfirmation, error)
}

// RewardRecord is the stored form of a confirmed reward
type RewardRecord struct {
	ConfirmationNumber string
	AccountNumber      string
	RewardAmount       MonetaryAmount
	RewardDate         time.Time
	MerchantNumber     string
	DiningAmount       MonetaryAmount
	DiningDate         time.Time
}

// RewardFinder looks up recorded rewards
type RewardFinder interface {
	// GetByConfirmationNumber retrieves a recorded reward
	// Returns an error wrapping ErrRewardNotFound if no reward matches
	GetByConfirmationNumber(ctx context.Context, confirmationNumber string) (*RewardRecord, error)
}

// RewardRepository defines the interface for reward persistence operations
type RewardRepository interface {
	ConfirmationRecorder
	RewardFinder
}

// Seedable is a store that fixture data can be loaded into
type Seedable interface {
	AccountRepository
	RestaurantRepository
}

// Store is a complete reward network backend: accounts, restaurants and rewards
type Store interface {
	AccountRepository
	RestaurantRepository
	RewardRepository
}
