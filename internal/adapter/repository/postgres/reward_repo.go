package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

// rewardRepository implements domain.RewardRepository
type rewardRepository struct {
	db  *DB
	now func() time.Time
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *DB) domain.RewardRepository {
	return &rewardRepository{db: db, now: time.Now}
}

// ConfirmReward inserts a reward row under a new confirmation number
func (r *rewardRepository) ConfirmReward(ctx context.Context, contribution *domain.AccountContribution, dining domain.Dining) (*domain.RewardConfirmation, error) {
	query := `
		INSERT INTO rewards (confirmation_number, account_number, reward_amount, reward_date, merchant_number, dining_amount, dining_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	confirmationNumber := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		confirmationNumber,
		contribution.AccountNumber,
		contribution.Amount.String(),
		r.now().UTC(),
		dining.MerchantNumber,
		dining.Amount.String(),
		dining.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reward: %w", err)
	}

	return &domain.RewardConfirmation{
		ConfirmationNumber: confirmationNumber,
		Contribution:       contribution,
	}, nil
}

// GetByConfirmationNumber retrieves a reward by its confirmation number
func (r *rewardRepository) GetByConfirmationNumber(ctx context.Context, confirmationNumber string) (*domain.RewardRecord, error) {
	query := `
		SELECT confirmation_number, account_number, reward_amount, reward_date, merchant_number, dining_amount, dining_date
		FROM rewards
		WHERE confirmation_number = $1
	`

	var record domain.RewardRecord
	var rewardAmountStr, diningAmountStr string
	err := r.db.QueryRowContext(ctx, query, confirmationNumber).Scan(
		&record.ConfirmationNumber,
		&record.AccountNumber,
		&rewardAmountStr,
		&record.RewardDate,
		&record.MerchantNumber,
		&diningAmountStr,
		&record.DiningDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRewardNotFound, confirmationNumber)
		}
		return nil, fmt.Errorf("failed to get reward by confirmation number: %w", err)
	}

	record.RewardAmount, err = domain.ParseMonetaryAmount(rewardAmountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reward_amount: %w", err)
	}
	record.DiningAmount, err = domain.ParseMonetaryAmount(diningAmountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dining_amount: %w", err)
	}

	return &record, nil
}
