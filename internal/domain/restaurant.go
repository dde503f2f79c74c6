package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// BenefitKind selects how a restaurant computes the benefit for a dining
type BenefitKind string

const (
	BenefitKindFixedPercentage        BenefitKind = "FIXED_PERCENTAGE"
	BenefitKindPercentageWithOverride BenefitKind = "PERCENTAGE_WITH_OVERRIDE"
	BenefitKindNone                   BenefitKind = "NONE"
)

// BenefitAvailability decides whether a restaurant grants any benefit at all
type BenefitAvailability string

const (
	BenefitAvailabilityAlways BenefitAvailability = "ALWAYS"
	BenefitAvailabilityNever  BenefitAvailability = "NEVER"
)

// BenefitPolicy is the restaurant's benefit calculation strategy
// Kind picks the variant; the remaining fields are that variant's parameters.
type BenefitPolicy struct {
	Kind       BenefitKind
	Percentage Percentage            // FIXED_PERCENTAGE and PERCENTAGE_WITH_OVERRIDE default rate
	Overrides  map[string]Percentage // PERCENTAGE_WITH_OVERRIDE: account number -> rate
}

// FixedPercentage returns a policy granting rate x dining amount
func FixedPercentage(rate Percentage) BenefitPolicy {
	return BenefitPolicy{Kind: BenefitKindFixedPercentage, Percentage: rate}
}

// PercentageWithOverride returns a policy granting rate x dining amount,
// unless the account number has its own rate in overrides
func PercentageWithOverride(rate Percentage, overrides map[string]Percentage) BenefitPolicy {
	copied := make(map[string]Percentage, len(overrides))
	for k, v := range overrides {
		copied[k] = v
	}
	return BenefitPolicy{Kind: BenefitKindPercentageWithOverride, Percentage: rate, Overrides: copied}
}

// NoBenefit returns a policy that always yields a zero benefit
func NoBenefit() BenefitPolicy {
	return BenefitPolicy{Kind: BenefitKindNone}
}

// Calculate computes the benefit for a dining. It is a pure function of its inputs.
func (p BenefitPolicy) Calculate(account *Account, dining Dining) (MonetaryAmount, error) {
	if !dining.Amount.IsPositive() {
		return MonetaryAmount{}, fmt.Errorf("%w: dining amount must be positive, got %s", ErrInvalidAmount, dining.Amount)
	}

	switch p.Kind {
	case BenefitKindFixedPercentage:
		return dining.Amount.MultiplyBy(p.Percentage), nil
	case BenefitKindPercentageWithOverride:
		rate := p.Percentage
		if account != nil {
			if override, ok := p.Overrides[account.Number]; ok {
				rate = override
			}
		}
		return dining.Amount.MultiplyBy(rate), nil
	case BenefitKindNone:
		return ZeroAmount, nil
	default:
		return MonetaryAmount{}, fmt.Errorf("unknown benefit kind %q", p.Kind)
	}
}

// Validate ensures the policy is one of the known variants
func (p BenefitPolicy) Validate() error {
	switch p.Kind {
	case BenefitKindFixedPercentage, BenefitKindPercentageWithOverride, BenefitKindNone:
		return nil
	default:
		return fmt.Errorf("benefit kind must be FIXED_PERCENTAGE, PERCENTAGE_WITH_OVERRIDE, or NONE, got %q", p.Kind)
	}
}

// Restaurant represents a restaurant in the reward network
// Read-only for reward processing
type Restaurant struct {
	ID           uuid.UUID
	Number       string // Merchant number
	Name         string
	Benefit      BenefitPolicy
	Availability BenefitAvailability
}

// Validate ensures the restaurant adheres to domain rules
func (r *Restaurant) Validate() error {
	if r.Number == "" {
		return fmt.Errorf("restaurant merchant number cannot be empty")
	}
	if r.Availability != BenefitAvailabilityAlways && r.Availability != BenefitAvailabilityNever {
		return fmt.Errorf("restaurant benefit availability must be ALWAYS or NEVER, got %q", r.Availability)
	}
	return r.Benefit.Validate()
}

// CalculateBenefitFor computes the benefit owed to account for dining at this restaurant
// A restaurant whose benefit is not available yields a zero benefit.
func (r *Restaurant) CalculateBenefitFor(account *Account, dining Dining) (MonetaryAmount, error) {
	if r.Availability == BenefitAvailabilityNever {
		if !dining.Amount.IsPositive() {
			return MonetaryAmount{}, fmt.Errorf("%w: dining amount must be positive, got %s", ErrInvalidAmount, dining.Amount)
		}
		return ZeroAmount, nil
	}
	return r.Benefit.Calculate(account, dining)
}
