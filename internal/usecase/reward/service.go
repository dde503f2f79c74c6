package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
	"github.com/simaogato/rewardnetwork-backend/internal/platform/metrics"
)

const tracerName = "github.com/simaogato/rewardnetwork-backend/internal/usecase/reward"

// AccountStore is what the reward service needs from account persistence
type AccountStore interface {
	domain.AccountFinder
	domain.AccountPersister
}

// RewardService rewards accounts for dining at restaurants in the network
type RewardService struct {
	AccountRepo    AccountStore
	RestaurantRepo domain.RestaurantFinder
	RewardRepo     domain.ConfirmationRecorder

	logger  *slog.Logger
	metrics *metrics.RewardMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option customizes a RewardService
type Option func(*RewardService)

// WithLogger sets the logger used for reward outcomes
func WithLogger(logger *slog.Logger) Option {
	return func(s *RewardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *metrics.RewardMetrics) Option {
	return func(s *RewardService) { s.metrics = m }
}

// WithTracerProvider sets the tracer provider spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *RewardService) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewRewardService creates a new RewardService instance
func NewRewardService(
	accountRepo AccountStore,
	restaurantRepo domain.RestaurantFinder,
	rewardRepo domain.ConfirmationRecorder,
	opts ...Option,
) *RewardService {
	s := &RewardService{
		AccountRepo:    accountRepo,
		RestaurantRepo: restaurantRepo,
		RewardRepo:     rewardRepo,
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RewardAccountFor rewards the account charged for dining and returns a confirmation
// Logic:
//  1. Look up the account by credit card number
//  2. Look up the restaurant by merchant number
//  3. Calculate the benefit with the restaurant's benefit policy
//  4. Allocate the benefit across the account's beneficiaries
//  5. Persist the updated beneficiary savings
//  6. Record the contribution and return the confirmation
//
// No step is retried. Any failure aborts the operation with a *domain.RewardError naming
// the failed step; persistence is only attempted after allocation succeeded and
// confirmation only after persistence succeeded.
func (s *RewardService) RewardAccountFor(ctx context.Context, dining domain.Dining) (*domain.RewardConfirmation, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "RewardAccountFor", trace.WithAttributes(
		attribute.String("dining.merchant_number", dining.MerchantNumber),
		attribute.String("dining.amount", dining.Amount.String()),
	))
	defer span.End()

	confirmation, err := s.rewardAccountFor(ctx, dining)
	elapsed := s.now().Sub(start)
	if err != nil {
		step := ""
		var rewardErr *domain.RewardError
		if errors.As(err, &rewardErr) {
			step = string(rewardErr.Step)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveFailure(step, elapsed)
		s.logger.WarnContext(ctx, "reward failed",
			slog.String("step", step),
			slog.String("card", maskCard(dining.CreditCardNumber)),
			slog.String("merchant_number", dining.MerchantNumber),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	contribution := confirmation.Contribution
	span.SetAttributes(
		attribute.String("reward.confirmation_number", confirmation.ConfirmationNumber),
		attribute.String("reward.account_number", contribution.AccountNumber),
		attribute.String("reward.amount", contribution.Amount.String()),
	)
	s.metrics.ObserveReward(contribution.Amount.Decimal().InexactFloat64(), roundingAdjusted(contribution), elapsed)
	s.logger.InfoContext(ctx, "reward confirmed",
		slog.String("confirmation_number", confirmation.ConfirmationNumber),
		slog.String("account_number", contribution.AccountNumber),
		slog.String("merchant_number", dining.MerchantNumber),
		slog.String("amount", contribution.Amount.String()),
		slog.Int("distributions", len(contribution.Distributions)),
	)
	return confirmation, nil
}

func (s *RewardService) rewardAccountFor(ctx context.Context, dining domain.Dining) (*domain.RewardConfirmation, error) {
	if err := dining.Validate(); err != nil {
		return nil, fail(domain.StepValidateDining, err)
	}

	// 1. Look up account by credit card number
	account, err := traced(ctx, s.tracer, domain.StepFindAccount, func(ctx context.Context) (*domain.Account, error) {
		return s.AccountRepo.FindByCreditCard(ctx, dining.CreditCardNumber)
	})
	if err != nil {
		return nil, fail(domain.StepFindAccount, err)
	}

	// 2. Look up restaurant by merchant number
	restaurant, err := traced(ctx, s.tracer, domain.StepFindRestaurant, func(ctx context.Context) (*domain.Restaurant, error) {
		return s.RestaurantRepo.FindByMerchantNumber(ctx, dining.MerchantNumber)
	})
	if err != nil {
		return nil, fail(domain.StepFindRestaurant, err)
	}

	// 3. Calculate benefit amount
	benefit, err := restaurant.CalculateBenefitFor(account, dining)
	if err != nil {
		return nil, fail(domain.StepCalculateBenefit, err)
	}

	// 4. Create account contribution (credits beneficiary savings in memory)
	contribution, err := account.MakeContribution(benefit)
	if err != nil {
		return nil, fail(domain.StepMakeContribution, err)
	}

	// 5. Update beneficiaries
	_, err = traced(ctx, s.tracer, domain.StepUpdateBeneficiaries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.AccountRepo.UpdateBeneficiaries(ctx, account)
	})
	if err != nil {
		return nil, fail(domain.StepUpdateBeneficiaries, asPersistence(err))
	}

	// 6. Confirm and return the reward
	confirmation, err := traced(ctx, s.tracer, domain.StepConfirmReward, func(ctx context.Context) (*domain.RewardConfirmation, error) {
		return s.RewardRepo.ConfirmReward(ctx, contribution, dining)
	})
	if err != nil {
		return nil, fail(domain.StepConfirmReward, asPersistence(err))
	}
	if confirmation == nil || confirmation.ConfirmationNumber == "" {
		return nil, fail(domain.StepConfirmReward, fmt.Errorf("%w: empty confirmation returned", domain.ErrPersistence))
	}

	return confirmation, nil
}

// traced runs fn inside a child span named after the step
func traced[T any](ctx context.Context, tracer trace.Tracer, step domain.RewardStep, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, string(step))
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func fail(step domain.RewardStep, err error) error {
	return &domain.RewardError{Step: step, Err: err}
}

// asPersistence tags a storage collaborator failure with domain.ErrPersistence
func asPersistence(err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}

// roundingAdjusted reports whether the last distribution differs from its percentage share,
// i.e. it absorbed a rounding remainder
func roundingAdjusted(c *domain.AccountContribution) bool {
	if len(c.Distributions) < 2 {
		return false
	}
	last := c.Distributions[len(c.Distributions)-1]
	return !last.Amount.Equal(c.Amount.MultiplyBy(last.Percentage))
}

// maskCard keeps only the last four digits of a card number for logs
func maskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	masked := make([]byte, len(card))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(card)-4:], card[len(card)-4:])
	return string(masked)
}
