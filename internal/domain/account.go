// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountInactive indicates that the account is closed for operations.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrAccountServiceUnavailable indicates that the account service could not
	// be reached or returned a malformed or unexpected response.
	ErrAccountServiceUnavailable = errors.New("account service unavailable")
	// ErrBalanceUpdateRejected indicates that the account service refused to
	// apply a balance delta.
	ErrBalanceUpdateRejected = errors.New("balance update rejected")
)

// AccountType enumerates the supported account types.
type AccountType string

// Supported account types.
const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountInvestment AccountType = "INVESTMENT"
)

// Account holds balance data for a specific currency.
//
// Balance is a decimal encoded as a string and is only ever changed through
// signed-delta mutations applied by the account store.
type Account struct {
	ID            uuid.UUID   `json:"id"`
	AccountNumber string      `json:"account_number"`
	Owner         string      `json:"owner"`
	Type          AccountType `json:"type"`
	Balance       string      `json:"balance"`
	Currency      string      `json:"currency"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
}
