package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotificationNotFound indicates that the notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotificationNotFailed indicates a resend attempt for a notification
	// that has not failed. Only failed notifications can be resent.
	ErrNotificationNotFailed = errors.New("only failed notifications can be resent")
)

// NotificationType enumerates the notification types.
type NotificationType string

// Supported notification types.
const (
	NotificationAccountCreated       NotificationType = "ACCOUNT_CREATED"
	NotificationTransactionCompleted NotificationType = "TRANSACTION_COMPLETED"
	NotificationTransactionFailed    NotificationType = "TRANSACTION_FAILED"
	NotificationSecurityAlert        NotificationType = "SECURITY_ALERT"
	NotificationGeneralInformation   NotificationType = "GENERAL_INFORMATION"
)

// NotificationStatus enumerates notification delivery states.
type NotificationStatus string

// Notification statuses. The resend path moves Failed back to Sent and is
// the only post-terminal mutation in the system.
const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification holds one message sent to a customer over the email side-channel.
type Notification struct {
	ID        uuid.UUID          `json:"id"`
	Recipient string             `json:"recipient"`
	Type      NotificationType   `json:"type"`
	Subject   string             `json:"subject"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

// CreateNotificationParams is the input data for creating a notification.
type CreateNotificationParams struct {
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	Subject   string           `json:"subject"`
	Message   string           `json:"message"`
}
