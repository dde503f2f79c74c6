package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is; adapters and services wrap them with context.
var (
	// ErrAccountNotFound is returned when no account matches a credit card number
	ErrAccountNotFound = errors.New("account not found")

	// ErrRestaurantNotFound is returned when no restaurant matches a merchant number
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrRewardNotFound is returned when no reward matches a confirmation number
	ErrRewardNotFound = errors.New("reward not found")

	// ErrInvalidContribution is returned when a contribution cannot be allocated,
	// e.g. the account has no beneficiaries
	ErrInvalidContribution = errors.New("invalid contribution")

	// ErrPersistence tags opaque failures surfaced by a persistence collaborator
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidAmount is returned for non-positive dining amounts and malformed monetary input
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPercentage is returned for a percentage outside [0, 1] or malformed input
	ErrInvalidPercentage = errors.New("invalid percentage")

	// ErrInvalidAccount is returned when an account breaks its allocation invariants
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidDining is returned when a dining is missing its card or merchant number
	ErrInvalidDining = errors.New("invalid dining")

	// ErrInvalidRequest is returned when a query is missing its lookup key
	ErrInvalidRequest = errors.New("invalid request")

	// ErrConcurrentModification is returned when an optimistic version check fails on save
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// RewardStep names a stage of the reward pipeline
type RewardStep string

const (
	StepValidateDining      RewardStep = "validate dining"
	StepFindAccount         RewardStep = "find account"
	StepFindRestaurant      RewardStep = "find restaurant"
	StepCalculateBenefit    RewardStep = "calculate benefit"
	StepMakeContribution    RewardStep = "make contribution"
	StepUpdateBeneficiaries RewardStep = "update beneficiaries"
	StepConfirmReward       RewardStep = "confirm reward"
)

// RewardError reports which step of a reward operation failed.
// It unwraps to the underlying error so errors.Is keeps matching the sentinels above.
type RewardError struct {
	Step RewardStep
	Err  error
}

func (e *RewardError) Error() string {
	return fmt.Sprintf("reward failed at %s: %v", e.Step, e.Err)
}

func (e *RewardError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means a lookup found nothing (likely bad input)
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrRestaurantNotFound) ||
		errors.Is(err, ErrRewardNotFound)
}

// IsInvalidInput reports whether err was caused by malformed caller input
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPercentage) ||
		errors.Is(err, ErrInvalidDining) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsInvalidState reports whether err signals a data integrity problem
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidContribution) || errors.Is(err, ErrInvalidAccount)
}

// IsStorageFailure reports whether err came from the storage infrastructure
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrPersistence)
}
