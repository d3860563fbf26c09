package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors surfaced to the caller before any remote effect.
// No transaction record is persisted for these.
var (
	// ErrNonPositiveAmount indicates a zero, negative or unparsable amount.
	ErrNonPositiveAmount = errors.New("Transaction amount must be greater than zero")
	// ErrSourceAccountNotFound indicates that the source account does not exist.
	ErrSourceAccountNotFound = errors.New("Source account not found")
	// ErrSourceAccountInactive indicates that the source account is inactive.
	ErrSourceAccountInactive = errors.New("Source account is inactive")
	// ErrDestinationAccountNotFound indicates that the destination account does not exist.
	ErrDestinationAccountNotFound = errors.New("Destination account not found")
	// ErrDestinationAccountInactive indicates that the destination account is inactive.
	ErrDestinationAccountInactive = errors.New("Destination account is inactive")
	// ErrDestinationAccountRequired indicates a transfer without a destination.
	ErrDestinationAccountRequired = errors.New("Destination account is required for transfers")
	// ErrCurrencyMismatch indicates a cross-currency request.
	ErrCurrencyMismatch = errors.New("Currency mismatch: Cross-currency transfers are not supported")

	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateIdempotencyKey indicates that another transaction already
	// holds the given idempotency key.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// TransactionType enumerates the transaction types.
type TransactionType string

// The closed set of transaction types. Payment, Fee and Interest are
// recognized by the settlement engine but rejected as unsupported.
const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
	TypePayment    TransactionType = "PAYMENT"
	TypeFee        TransactionType = "FEE"
	TypeInterest   TransactionType = "INTEREST"
)

// TransactionStatus enumerates transaction lifecycle states.
type TransactionStatus string

// Transaction statuses. Completed and Failed are terminal.
const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Failure reasons recorded on settled transactions with status Failed.
const (
	FailureBalanceUpdate     = "Failed to update account balance"
	FailureInsufficientFunds = "Insufficient funds"
	FailureTransfer          = "Failed to complete transfer"
)

// FailureUnsupportedType returns the failure reason for a transaction type
// the settlement engine does not handle.
func FailureUnsupportedType(t TransactionType) string {
	return "Unsupported transaction type: " + string(t)
}

// Transaction holds the durable outcome of one settlement request.
//
// Amount is a strictly positive decimal encoded as a string. FailureReason is
// set if and only if Status is StatusFailed.
type Transaction struct {
	ID                       uuid.UUID         `json:"id"`
	ReferenceNumber          string            `json:"reference_number"`
	Type                     TransactionType   `json:"type"`
	Amount                   string            `json:"amount"`
	Currency                 string            `json:"currency"`
	SourceAccountID          uuid.UUID         `json:"source_account_id"`
	SourceAccountNumber      string            `json:"source_account_number"`
	DestinationAccountID     *uuid.UUID        `json:"destination_account_id,omitempty"`
	DestinationAccountNumber string            `json:"destination_account_number,omitempty"`
	Status                   TransactionStatus `json:"status"`
	FailureReason            string            `json:"failure_reason,omitempty"`
	Description              string            `json:"description"`
	IdempotencyKey           string            `json:"idempotency_key,omitempty"`
	CreatedAt                time.Time         `json:"created_at"`
	UpdatedAt                *time.Time        `json:"updated_at,omitempty"`
}

// CreateTransactionParams is the input data for the settlement engine.
type CreateTransactionParams struct {
	Type                 TransactionType `json:"type"`
	Amount               string          `json:"amount"`
	Currency             string          `json:"currency"`
	SourceAccountID      uuid.UUID       `json:"source_account_id"`
	DestinationAccountID *uuid.UUID      `json:"destination_account_id,omitempty"`
	Description          string          `json:"description"`
	IdempotencyKey       string          `json:"idempotency_key,omitempty"`
}
