// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/dbpkg"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/google/uuid"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (account_number, owner, type, balance, currency)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, account_number, owner, type, balance, currency, is_active, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, accountNumber, owner string, accType domain.AccountType, currency string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountNumber, owner, accType, "0", currency)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_owner_fkey" {
				return a, domain.ErrOwnerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, account_number, owner, type, balance, currency, is_active, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT
	id, account_number, owner, type, balance, currency, is_active, created_at
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, accountNumber)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT
	id, account_number, owner, type, balance, currency, is_active, created_at
FROM accounts
WHERE owner = $1
ORDER BY created_at
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts for the given owner.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.AccountNumber, &a.Owner, &a.Type, &a.Balance, &a.Currency, &a.IsActive, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2 AND is_active
RETURNING id, account_number, owner, type, balance, currency, is_active, created_at
`

// AddBalance credits the account unconditionally and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, r.mutationFailure(ctx, id)
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const debitBalanceQuery = `
UPDATE accounts
SET balance = balance - $1
WHERE id = $2 AND is_active AND balance >= $1
RETURNING id, account_number, owner, type, balance, currency, is_active, created_at
`

// DebitBalance debits the account only if the remaining balance is sufficient.
//
// The check and the update are a single statement so two concurrent debits
// cannot both pass on the same funds.
func (r *RepoPGS) DebitBalance(ctx context.Context, amount string, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, debitBalanceQuery, amount, id)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, r.debitFailure(ctx, id)
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

// mutationFailure resolves why a balance mutation matched no rows.
func (r *RepoPGS) mutationFailure(ctx context.Context, id uuid.UUID) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if !a.IsActive {
		return domain.ErrAccountInactive
	}

	return errorspkg.ErrInternal
}

func (r *RepoPGS) debitFailure(ctx context.Context, id uuid.UUID) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if !a.IsActive {
		return domain.ErrAccountInactive
	}

	return domain.ErrInsufficientBalance
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Owner,
		&a.Type,
		&a.Balance,
		&a.Currency,
		&a.IsActive,
		&a.CreatedAt,
	)

	return a, err
}
