package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

// restaurantRepository implements domain.RestaurantRepository
type restaurantRepository struct {
	db *DB
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(db *DB) domain.RestaurantRepository {
	return &restaurantRepository{db: db}
}

// FindByMerchantNumber retrieves a restaurant and its benefit policy
func (r *restaurantRepository) FindByMerchantNumber(ctx context.Context, merchantNumber string) (*domain.Restaurant, error) {
	query := `
		SELECT id, merchant_number, name, benefit_kind, benefit_percentage, benefit_availability
		FROM restaurants
		WHERE merchant_number = $1
	`

	var restaurant domain.Restaurant
	var kind, pctStr, availability string
	err := r.db.QueryRowContext(ctx, query, merchantNumber).Scan(
		&restaurant.ID,
		&restaurant.Number,
		&restaurant.Name,
		&kind,
		&pctStr,
		&availability,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no restaurant for merchant number %s", domain.ErrRestaurantNotFound, merchantNumber)
		}
		return nil, fmt.Errorf("failed to get restaurant by merchant number: %w", err)
	}

	pct, err := domain.ParsePercentage(pctStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse benefit_percentage: %w", err)
	}
	restaurant.Availability = domain.BenefitAvailability(availability)
	restaurant.Benefit = domain.BenefitPolicy{Kind: domain.BenefitKind(kind), Percentage: pct}

	if restaurant.Benefit.Kind == domain.BenefitKindPercentageWithOverride {
		overrides, err := r.loadOverrides(ctx, restaurant.ID)
		if err != nil {
			return nil, err
		}
		restaurant.Benefit.Overrides = overrides
	}

	return &restaurant, nil
}

func (r *restaurantRepository) loadOverrides(ctx context.Context, restaurantID uuid.UUID) (map[string]domain.Percentage, error) {
	query := `
		SELECT account_number, percentage
		FROM restaurant_benefit_overrides
		WHERE restaurant_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query benefit overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]domain.Percentage)
	for rows.Next() {
		var accountNumber, pctStr string
		if err := rows.Scan(&accountNumber, &pctStr); err != nil {
			return nil, fmt.Errorf("failed to scan benefit override: %w", err)
		}
		pct, err := domain.ParsePercentage(pctStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse override percentage for %s: %w", accountNumber, err)
		}
		overrides[accountNumber] = pct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benefit overrides: %w", err)
	}

	return overrides, nil
}

// CreateRestaurant creates a restaurant and its benefit overrides in a database transaction
func (r *restaurantRepository) CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) error {
	if err := restaurant.Validate(); err != nil {
		return err
	}
	if restaurant.ID == uuid.Nil {
		restaurant.ID = uuid.New()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertRestaurantQuery := `
		INSERT INTO restaurants (id, merchant_number, name, benefit_kind, benefit_percentage, benefit_availability)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = dbTx.ExecContext(ctx, insertRestaurantQuery,
		restaurant.ID,
		restaurant.Number,
		restaurant.Name,
		string(restaurant.Benefit.Kind),
		restaurant.Benefit.Percentage.Decimal().String(),
		string(restaurant.Availability),
	)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	insertOverrideQuery := `
		INSERT INTO restaurant_benefit_overrides (restaurant_id, account_number, percentage)
		VALUES ($1, $2, $3)
	`
	for accountNumber, pct := range restaurant.Benefit.Overrides {
		_, err = dbTx.ExecContext(ctx, insertOverrideQuery, restaurant.ID, accountNumber, pct.Decimal().String())
		if err != nil {
			return fmt.Errorf("failed to insert benefit override for %s: %w", accountNumber, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
