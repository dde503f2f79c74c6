package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Beneficiary is a named recipient of a fixed share of an account's contributions
type Beneficiary struct {
	Name                 string
	AllocationPercentage Percentage
	Savings              MonetaryAmount // Cumulative total credited to this beneficiary
}

// credit adds amount to the beneficiary's running savings
func (b *Beneficiary) credit(amount MonetaryAmount) {
	b.Savings = b.Savings.Add(amount)
}

// Account represents a reward account in the domain layer
// The account exclusively owns its Beneficiaries; Version is the optimistic-lock counter
// maintained by the persistence layer.
type Account struct {
	ID               uuid.UUID
	Number           string
	Name             string
	CreditCardNumber string
	Beneficiaries    []Beneficiary
	Version          int64
}

// AddBeneficiary appends a beneficiary with zero savings
// Names must be unique within the account
func (a *Account) AddBeneficiary(name string, allocation Percentage) error {
	if name == "" {
		return fmt.Errorf("%w: beneficiary name cannot be empty", ErrInvalidAccount)
	}
	if _, ok := a.Beneficiary(name); ok {
		return fmt.Errorf("%w: duplicate beneficiary %q", ErrInvalidAccount, name)
	}
	a.Beneficiaries = append(a.Beneficiaries, Beneficiary{
		Name:                 name,
		AllocationPercentage: allocation,
		Savings:              ZeroAmount,
	})
	return nil
}

// Beneficiary returns a copy of the named beneficiary
func (a *Account) Beneficiary(name string) (Beneficiary, bool) {
	for _, b := range a.Beneficiaries {
		if b.Name == name {
			return b, true
		}
	}
	return Beneficiary{}, false
}

// TotalSavings sums the savings of every beneficiary
func (a *Account) TotalSavings() MonetaryAmount {
	total := ZeroAmount
	for _, b := range a.Beneficiaries {
		total = total.Add(b.Savings)
	}
	return total
}

// Validate ensures the account adheres to domain rules
// CRITICAL: When the account has beneficiaries, their allocation percentages must sum to exactly 100%
func (a *Account) Validate() error {
	if a.Number == "" {
		return fmt.Errorf("%w: account number cannot be empty", ErrInvalidAccount)
	}

	if len(a.Beneficiaries) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(a.Beneficiaries))
	total := decimal.Zero
	for _, b := range a.Beneficiaries {
		if b.Name == "" {
			return fmt.Errorf("%w: beneficiary name cannot be empty", ErrInvalidAccount)
		}
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("%w: duplicate beneficiary %q", ErrInvalidAccount, b.Name)
		}
		seen[b.Name] = struct{}{}
		total = total.Add(b.AllocationPercentage.Decimal())
	}

	if !total.Equal(one) {
		return fmt.Errorf("%w: beneficiary allocations must total 100%%, got %s%%",
			ErrInvalidAccount, total.Mul(oneHundred).String())
	}

	return nil
}

// Clone returns a deep copy of the account, so stores never share beneficiary slices with callers
func (a *Account) Clone() *Account {
	c := *a
	c.Beneficiaries = make([]Beneficiary, len(a.Beneficiaries))
	copy(c.Beneficiaries, a.Beneficiaries)
	return &c
}
