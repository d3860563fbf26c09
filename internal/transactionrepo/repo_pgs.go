// Package transactionrepo manages repository layer of transactions.
package transactionrepo

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

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const transactionColumns = `
	id, reference_number, type, amount, currency,
	source_account_id, source_account_number,
	destination_account_id, destination_account_number,
	status, failure_reason, description, idempotency_key, created_at, updated_at
`

const createQuery = `
INSERT INTO transactions (
	id, reference_number, type, amount, currency,
	source_account_id, source_account_number,
	destination_account_id, destination_account_number,
	status, failure_reason, description, idempotency_key, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING` + transactionColumns

// Create persists the settled transaction exactly as given and returns it.
func (r *RepoPGS) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var destinationID uuid.NullUUID
	if t.DestinationAccountID != nil {
		destinationID = uuid.NullUUID{UUID: *t.DestinationAccountID, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		t.ID,
		t.ReferenceNumber,
		t.Type,
		t.Amount,
		t.Currency,
		t.SourceAccountID,
		t.SourceAccountNumber,
		destinationID,
		nullString(t.DestinationAccountNumber),
		t.Status,
		nullString(t.FailureReason),
		t.Description,
		nullString(t.IdempotencyKey),
		t.CreatedAt,
	)

	created, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "transactions_idempotency_key_key" {
				return created, domain.ErrDuplicateIdempotencyKey
			}
		}

		return created, errorspkg.ErrInternal
	}

	return created, nil
}

const getQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	return r.getOne(ctx, getQuery, id)
}

const getByReferenceQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE reference_number = $1
`

// GetByReference returns the transaction with the given reference number.
func (r *RepoPGS) GetByReference(ctx context.Context, referenceNumber string) (domain.Transaction, error) {
	return r.getOne(ctx, getByReferenceQuery, referenceNumber)
}

const getByIdempotencyKeyQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE idempotency_key = $1
`

// GetByIdempotencyKey returns the transaction settled for the given key.
func (r *RepoPGS) GetByIdempotencyKey(ctx context.Context, key string) (domain.Transaction, error) {
	return r.getOne(ctx, getByIdempotencyKeyQuery, key)
}

func (r *RepoPGS) getOne(ctx context.Context, query string, arg interface{}) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, arg)

	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByAccountQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE source_account_id = $1 OR destination_account_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

// ListByAccount returns the transactions where the given account is either
// the source or the destination, newest first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error) {
	return r.list(ctx, listByAccountQuery, accountID, limit, offset)
}

const listQuery = `
SELECT` + transactionColumns + `
FROM transactions
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

// List returns all transactions, newest first.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error) {
	return r.list(ctx, listQuery, limit, offset)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var (
		t                 domain.Transaction
		destinationID     uuid.NullUUID
		destinationNumber sql.NullString
		failureReason     sql.NullString
		idempotencyKey    sql.NullString
		updatedAt         sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.ReferenceNumber,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.SourceAccountID,
		&t.SourceAccountNumber,
		&destinationID,
		&destinationNumber,
		&t.Status,
		&failureReason,
		&t.Description,
		&idempotencyKey,
		&t.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return t, err
	}

	if destinationID.Valid {
		id := destinationID.UUID
		t.DestinationAccountID = &id
	}

	t.DestinationAccountNumber = destinationNumber.String
	t.FailureReason = failureReason.String
	t.IdempotencyKey = idempotencyKey.String

	if updatedAt.Valid {
		at := updatedAt.Time
		t.UpdatedAt = &at
	}

	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
