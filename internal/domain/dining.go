package domain

import (
	"fmt"
	"strings"
	"time"
)

// Dining represents a completed payment-card transaction at a restaurant
// Immutable once created; one Dining per reward request
type Dining struct {
	Amount           MonetaryAmount
	CreditCardNumber string
	MerchantNumber   string
	Date             time.Time
}

// NewDining creates a validated Dining
func NewDining(amount MonetaryAmount, creditCardNumber, merchantNumber string, date time.Time) (Dining, error) {
	d := Dining{
		Amount:           amount,
		CreditCardNumber: strings.TrimSpace(creditCardNumber),
		MerchantNumber:   strings.TrimSpace(merchantNumber),
		Date:             date,
	}
	if err := d.Validate(); err != nil {
		return Dining{}, err
	}
	return d, nil
}

// CreateDining parses amount and stamps the dining with today's date (UTC)
func CreateDining(amount, creditCardNumber, merchantNumber string) (Dining, error) {
	parsed, err := ParseMonetaryAmount(amount)
	if err != nil {
		return Dining{}, err
	}
	return NewDining(parsed, creditCardNumber, merchantNumber, time.Now().UTC().Truncate(24*time.Hour))
}

// Validate ensures the dining adheres to domain rules
// Amount must be positive; card and merchant numbers must be present
func (d Dining) Validate() error {
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: dining amount must be positive, got %s", ErrInvalidAmount, d.Amount)
	}
	if d.CreditCardNumber == "" {
		return fmt.Errorf("%w: credit card number is required", ErrInvalidDining)
	}
	if d.MerchantNumber == "" {
		return fmt.Errorf("%w: merchant number is required", ErrInvalidDining)
	}
	return nil
}
