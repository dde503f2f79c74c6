package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/simaogato/rewardnetwork-backend/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// FindByCreditCard retrieves an account and its beneficiaries by credit card number
func (r *accountRepository) FindByCreditCard(ctx context.Context, creditCardNumber string) (*domain.Account, error) {
	query := `
		SELECT id, number, name, credit_card_number, version
		FROM accounts
		WHERE credit_card_number = $1
	`

	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, creditCardNumber).Scan(
		&account.ID,
		&account.Number,
		&account.Name,
		&account.CreditCardNumber,
		&account.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no account for credit card %s", domain.ErrAccountNotFound, creditCardNumber)
		}
		return nil, fmt.Errorf("failed to get account by credit card: %w", err)
	}

	beneficiaries, err := r.loadBeneficiaries(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.Beneficiaries = beneficiaries

	return &account, nil
}

func (r *accountRepository) loadBeneficiaries(ctx context.Context, accountID uuid.UUID) ([]domain.Beneficiary, error) {
	query := `
		SELECT name, allocation_percentage, savings
		FROM beneficiaries
		WHERE account_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()

	var beneficiaries []domain.Beneficiary
	for rows.Next() {
		var name, pctStr, savingsStr string
		if err := rows.Scan(&name, &pctStr, &savingsStr); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}

		// Parse allocation_percentage (NUMERIC)
		pct, err := domain.ParsePercentage(pctStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse allocation_percentage for %s: %w", name, err)
		}

		// Parse savings (NUMERIC(14,2))
		savings, err := domain.ParseMonetaryAmount(savingsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse savings for %s: %w", name, err)
		}

		beneficiaries = append(beneficiaries, domain.Beneficiary{
			Name:                 name,
			AllocationPercentage: pct,
			Savings:              savings,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating beneficiaries: %w", err)
	}

	return beneficiaries, nil
}

// CreateAccount creates a new account with all its beneficiaries in a database transaction
func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertAccountQuery := `
		INSERT INTO accounts (id, number, name, credit_card_number, version)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = dbTx.ExecContext(ctx, insertAccountQuery,
		account.ID,
		account.Number,
		account.Name,
		account.CreditCardNumber,
		account.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("account %s or credit card already exists: %w", account.Number, err)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	insertBeneficiaryQuery := `
		INSERT INTO beneficiaries (account_id, position, name, allocation_percentage, savings)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, b := range account.Beneficiaries {
		_, err = dbTx.ExecContext(ctx, insertBeneficiaryQuery,
			account.ID,
			i,
			b.Name,
			b.AllocationPercentage.Decimal().String(),
			b.Savings.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert beneficiary %s: %w", b.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBeneficiaries saves every beneficiary's savings and bumps the account version
// in one database transaction. The version guard turns a lost update into
// domain.ErrConcurrentModification.
func (r *accountRepository) UpdateBeneficiaries(ctx context.Context, account *domain.Account) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	bumpVersionQuery := `
		UPDATE accounts
		SET version = version + 1
		WHERE id = $1 AND version = $2
	`
	result, err := dbTx.ExecContext(ctx, bumpVersionQuery, account.ID, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update account version: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, account.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: account %s", domain.ErrAccountNotFound, account.Number)
		}
		return fmt.Errorf("%w: account %s changed since version %d", domain.ErrConcurrentModification, account.Number, account.Version)
	}

	updateSavingsQuery := `
		UPDATE beneficiaries
		SET savings = $1
		WHERE account_id = $2 AND name = $3
	`
	for _, b := range account.Beneficiaries {
		result, err := dbTx.ExecContext(ctx, updateSavingsQuery, b.Savings.String(), account.ID, b.Name)
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

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Version++
	return nil
}
