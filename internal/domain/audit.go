package domain

import (
	"time"

	"github.com/google/uuid"
)

// SettlementAudit is the operator-facing trail of one settlement outcome.
//
// Unreconciled is set when a transfer debit was applied but the credit leg
// failed and no compensating credit restored the source balance.
type SettlementAudit struct {
	TransactionID   uuid.UUID         `json:"transaction_id"`
	ReferenceNumber string            `json:"reference_number"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	FailureReason   string            `json:"failure_reason,omitempty"`
	Unreconciled    bool              `json:"unreconciled"`
	SettledAt       time.Time         `json:"settled_at"`
}
