package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Distribution is the portion of one contribution allocated to one beneficiary
type Distribution struct {
	BeneficiaryName string
	Amount          MonetaryAmount
	Percentage      Percentage
	TotalSavings    MonetaryAmount // Beneficiary savings after this distribution was credited
}

// AccountContribution records how a benefit amount was split across an account's beneficiaries
// Created once per reward operation and never mutated afterwards
type AccountContribution struct {
	AccountNumber string
	Amount        MonetaryAmount
	Distributions []Distribution
}

// Distribution returns the distribution made to the named beneficiary
func (c *AccountContribution) Distribution(beneficiaryName string) (Distribution, bool) {
	for _, d := range c.Distributions {
		if d.BeneficiaryName == beneficiaryName {
			return d, true
		}
	}
	return Distribution{}, false
}

// MakeContribution allocates total across the account's beneficiaries and credits their savings
// Logic:
//  1. Order beneficiaries by name (deterministic, independent of load order)
//  2. Every beneficiary but the last receives total x allocation, rounded half-up to cents,
//     capped at what is still unallocated
//  3. The last beneficiary receives total minus everything allocated so far
//
// Safety: Ensures the distributions sum to total exactly (no penny lost)
func (a *Account) MakeContribution(total MonetaryAmount) (*AccountContribution, error) {
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: contribution amount cannot be negative, got %s", ErrInvalidAmount, total)
	}

	if len(a.Beneficiaries) == 0 {
		return nil, fmt.Errorf("%w: account %s has no beneficiaries to allocate to", ErrInvalidContribution, a.Number)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContribution, err)
	}

	// Sort indexes rather than the beneficiaries themselves so the account keeps its own order
	order := make([]int, len(a.Beneficiaries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return a.Beneficiaries[order[i]].Name < a.Beneficiaries[order[j]].Name
	})

	amounts := make([]MonetaryAmount, len(order))
	allocated := ZeroAmount
	for pos, idx := range order {
		if pos == len(order)-1 {
			amounts[pos] = total.Sub(allocated)
			break
		}
		share := total.MultiplyBy(a.Beneficiaries[idx].AllocationPercentage)
		// Half-up rounding can overshoot on tiny totals; never hand out more than is left
		if remaining := total.Sub(allocated); share.GreaterThan(remaining) {
			share = remaining
		}
		amounts[pos] = share
		allocated = allocated.Add(share)
	}

	// Safety check: Ensure total allocation equals total contribution exactly
	sum := ZeroAmount
	for _, amount := range amounts {
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: rounding produced a negative share", ErrInvalidContribution)
		}
		sum = sum.Add(amount)
	}
	if !sum.Equal(total) {
		return nil, errors.Join(ErrInvalidContribution, errors.New("total allocation does not equal total amount"))
	}

	distributions := make([]Distribution, 0, len(order))
	for pos, idx := range order {
		b := &a.Beneficiaries[idx]
		b.credit(amounts[pos])
		distributions = append(distributions, Distribution{
			BeneficiaryName: b.Name,
			Amount:          amounts[pos],
			Percentage:      b.AllocationPercentage,
			TotalSavings:    b.Savings,
		})
	}

	return &AccountContribution{
		AccountNumber: a.Number,
		Amount:        total,
		Distributions: distributions,
	}, nil
}
