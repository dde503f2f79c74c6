package summary

import (
	"context"
	"fmt"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

// BeneficiarySummary is one beneficiary's line in an account summary
type BeneficiarySummary struct {
	Name       string
	Allocation domain.Percentage
	Savings    domain.MonetaryAmount
}

// AccountSummary represents the savings position of an account
type AccountSummary struct {
	AccountNumber string
	Name          string
	Beneficiaries []BeneficiarySummary
	TotalSavings  domain.MonetaryAmount
}

// SummaryService handles read-only account and reward queries
type SummaryService struct {
	AccountRepo domain.AccountFinder
	RewardRepo  domain.RewardFinder
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(accountRepo domain.AccountFinder, rewardRepo domain.RewardFinder) *SummaryService {
	return &SummaryService{
		AccountRepo: accountRepo,
		RewardRepo:  rewardRepo,
	}
}

// GetReward retrieves a confirmed reward by its confirmation number
func (s *SummaryService) GetReward(ctx context.Context, confirmationNumber string) (*domain.RewardRecord, error) {
	if confirmationNumber == "" {
		return nil, fmt.Errorf("%w: confirmation number is required", domain.ErrInvalidRequest)
	}
	record, err := s.RewardRepo.GetByConfirmationNumber(ctx, confirmationNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	return record, nil
}

// GetAccountSummary reports the savings of the account linked to a credit card
// Logic:
//   - Beneficiaries: allocation and cumulative savings, in the account's order
//   - TotalSavings: sum of all beneficiary savings
func (s *SummaryService) GetAccountSummary(ctx context.Context, creditCardNumber string) (*AccountSummary, error) {
	if creditCardNumber == "" {
		return nil, fmt.Errorf("%w: credit card number is required", domain.ErrInvalidRequest)
	}

	account, err := s.AccountRepo.FindByCreditCard(ctx, creditCardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	beneficiaries := make([]BeneficiarySummary, 0, len(account.Beneficiaries))
	for _, b := range account.Beneficiaries {
		beneficiaries = append(beneficiaries, BeneficiarySummary{
			Name:       b.Name,
			Allocation: b.AllocationPercentage,
			Savings:    b.Savings,
		})
	}

	return &AccountSummary{
		AccountNumber: account.Number,
		Name:          account.Name,
		Beneficiaries: beneficiaries,
		TotalSavings:  account.TotalSavings(),
	}, nil
}
