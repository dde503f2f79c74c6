package postgres

import "github.com/simaogato/rewardnetwork-backend/internal/domain"

var _ domain.Store = (*Store)(nil)

// Store groups the postgres repositories sharing one connection pool
type Store struct {
	domain.AccountRepository
	domain.RestaurantRepository
	domain.RewardRepository
}

// NewStore creates the account, restaurant and reward repositories over db
func NewStore(db *DB) *Store {
	return &Store{
		AccountRepository:    NewAccountRepository(db),
		RestaurantRepository: NewRestaurantRepository(db),
		RewardRepository:     NewRewardRepository(db),
	}
}
