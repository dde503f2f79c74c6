// Package sqlite provides SQLite-backed repositories for local runs and tests.
//
// The store uses the pure-Go modernc.org/sqlite driver and shares the relational layout of
// the postgres repositories. Decimals are stored as TEXT and parsed back into domain values.
// SQLite allows a single writer, so the pool is limited to one connection.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/simaogato/rewardnetwork-backend/internal/adapter/repository/migrations"
	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store implements domain.AccountRepository, domain.RestaurantRepository and
// domain.RewardRepository on a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrations.Up(ctx, db, migrations.DialectSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return "file:" + path + "?" + pragmas
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAccount creates an account and its beneficiaries in one transaction
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, number, name, credit_card_number, version)
		VALUES (?, ?, ?, ?, ?)`,
		account.ID.String(), account.Number, account.Name, account.CreditCardNumber, account.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	for i, b := range account.Beneficiaries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO beneficiaries (account_id, position, name, allocation_percentage, savings)
			VALUES (?, ?, ?, ?, ?)`,
			account.ID.String(), i, b.Name, b.AllocationPercentage.Decimal().String(), b.Savings.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert beneficiary %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindByCreditCard retrieves an account and its beneficiaries
func (s *Store) FindByCreditCard(ctx context.Context, creditCardNumber string) (*domain.Account, error) {
	var account domain.Account
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, number, name, credit_card_number, version
		FROM accounts
		WHERE credit_card_number = ?`, creditCardNumber,
	).Scan(&id, &account.Number, &account.Name, &account.CreditCardNumber, &account.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no account for credit card %s", domain.ErrAccountNotFound, creditCardNumber)
		}
		return nil, fmt.Errorf("failed to get account by credit card: %w", err)
	}
	if account.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse account id: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, allocation_percentage, savings
		FROM beneficiaries
		WHERE account_id = ?
		ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, pctStr, savingsStr string
		if err := rows.Scan(&name, &pctStr, &savingsStr); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		pct, err := domain.ParsePercentage(pctStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse allocation_percentage for %s: %w", name, err)
		}
		savings, err := domain.ParseMonetaryAmount(savingsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse savings for %s: %w", name, err)
		}
		account.Beneficiaries = append(account.Beneficiaries, domain.Beneficiary{
			Name:                 name,
			AllocationPercentage: pct,
			Savings:              savings,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating beneficiaries: %w", err)
	}

	return &account, nil
}

// UpdateBeneficiaries saves beneficiary savings guarded by the account version
func (s *Store) UpdateBeneficiaries(ctx context.Context, account *domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts SET version = version + 1
		WHERE credit_card_number = ? AND version = ?`,
		account.CreditCardNumber, account.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update account version: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE credit_card_number = ?`, account.CreditCardNumber).Scan(&count); err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: no account for credit card %s", domain.ErrAccountNotFound, account.CreditCardNumber)
		}
		return fmt.Errorf("%w: account %s changed since version %d", domain.ErrConcurrentModification, account.Number, account.Version)
	}

	for _, b := range account.Beneficiaries {
		result, err := tx.ExecContext(ctx, `
			UPDATE beneficiaries SET savings = ?
			WHERE name = ? AND account_id = (SELECT id FROM accounts WHERE credit_card_number = ?)`,
			b.Savings.String(), b.Name, account.CreditCardNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to update savings for %s: %w", b.Name, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("beneficiary %q not found on account %s", b.Name, account.Number)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	account.Version++
	return nil
}

// CreateRestaurant creates a restaurant and its benefit overrides in one transaction
func (s *Store) CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) error {
	if err := restaurant.Validate(); err != nil {
		return err
	}
	if restaurant.ID == uuid.Nil {
		restaurant.ID = uuid.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO restaurants (id, merchant_number, name, benefit_kind, benefit_percentage, benefit_availability)
		VALUES (?, ?, ?, ?, ?, ?)`,
		restaurant.ID.String(),
		restaurant.Number,
		restaurant.Name,
		string(restaurant.Benefit.Kind),
		restaurant.Benefit.Percentage.Decimal().String(),
		string(restaurant.Availability),
	)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	for accountNumber, pct := range restaurant.Benefit.Overrides {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO restaurant_benefit_overrides (restaurant_id, account_number, percentage)
			VALUES (?, ?, ?)`,
			restaurant.ID.String(), accountNumber, pct.Decimal().String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert benefit override for %s: %w", accountNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindByMerchantNumber retrieves a restaurant and its benefit policy
func (s *Store) FindByMerchantNumber(ctx context.Context, merchantNumber string) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	var id, kind, pctStr, availability string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, merchant_number, name, benefit_kind, benefit_percentage, benefit_availability
		FROM restaurants
		WHERE merchant_number = ?`, merchantNumber,
	).Scan(&id, &restaurant.Number, &restaurant.Name, &kind, &pctStr, &availability)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no restaurant for merchant number %s", domain.ErrRestaurantNotFound, merchantNumber)
		}
		return nil, fmt.Errorf("failed to get restaurant by merchant number: %w", err)
	}
	if restaurant.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse restaurant id: %w", err)
	}
	pct, err := domain.ParsePercentage(pctStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse benefit_percentage: %w", err)
	}
	restaurant.Availability = domain.BenefitAvailability(availability)
	restaurant.Benefit = domain.BenefitPolicy{Kind: domain.BenefitKind(kind), Percentage: pct}

	if restaurant.Benefit.Kind != domain.BenefitKindPercentageWithOverride {
		return &restaurant, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_number, percentage
		FROM restaurant_benefit_overrides
		WHERE restaurant_id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query benefit overrides: %w", err)
	}
	defer rows.Close()

	restaurant.Benefit.Overrides = make(map[string]domain.Percentage)
	for rows.Next() {
		var accountNumber, overrideStr string
		if err := rows.Scan(&accountNumber, &overrideStr); err != nil {
			return nil, fmt.Errorf("failed to scan benefit override: %w", err)
		}
		override, err := domain.ParsePercentage(overrideStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse override percentage for %s: %w", accountNumber, err)
		}
		restaurant.Benefit.Overrides[accountNumber] = override
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benefit overrides: %w", err)
	}

	return &restaurant, nil
}

// ConfirmReward inserts a reward row under a new confirmation number
func (s *Store) ConfirmReward(ctx context.Context, contribution *domain.AccountContribution, dining domain.Dining) (*domain.RewardConfirmation, error) {
	confirmationNumber := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewards (confirmation_number, account_number, reward_amount, reward_date, merchant_number, dining_amount, dining_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		confirmationNumber,
		contribution.AccountNumber,
		contribution.Amount.String(),
		s.now().UTC().Format(time.RFC3339Nano),
		dining.MerchantNumber,
		dining.Amount.String(),
		dining.Date.UTC().Format(time.RFC3339Nano),
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
func (s *Store) GetByConfirmationNumber(ctx context.Context, confirmationNumber string) (*domain.RewardRecord, error) {
	var record domain.RewardRecord
	var rewardAmount, rewardDate, diningAmount, diningDate string
	err := s.db.QueryRowContext(ctx, `
		SELECT confirmation_number, account_number, reward_amount, reward_date, merchant_number, dining_amount, dining_date
		FROM rewards
		WHERE confirmation_number = ?`, confirmationNumber,
	).Scan(&record.ConfirmationNumber, &record.AccountNumber, &rewardAmount, &rewardDate, &record.MerchantNumber, &diningAmount, &diningDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRewardNotFound, confirmationNumber)
		}
		return nil, fmt.Errorf("failed to get reward by confirmation number: %w", err)
	}

	if record.RewardAmount, err = domain.ParseMonetaryAmount(rewardAmount); err != nil {
		return nil, fmt.Errorf("failed to parse reward_amount: %w", err)
	}
	if record.DiningAmount, err = domain.ParseMonetaryAmount(diningAmount); err != nil {
		return nil, fmt.Errorf("failed to parse dining_amount: %w", err)
	}
	if record.RewardDate, err = time.Parse(time.RFC3339Nano, rewardDate); err != nil {
		return nil, fmt.Errorf("failed to parse reward_date: %w", err)
	}
	if record.DiningDate, err = time.Parse(time.RFC3339Nano, diningDate); err != nil {
		return nil, fmt.Errorf("failed to parse dining_date: %w", err)
	}

	return &record, nil
}
