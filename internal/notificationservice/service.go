// Package notificationservice implements the notifier business logic.
// A notification is persisted first and then handed to the email
// side-channel; delivery failures are recorded, not propagated.
package notificationservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=notificationservice

// Repo provides the data storage interface needed by notification service layer.
type Repo interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	ListByRecipient(ctx context.Context, recipient string, limit, offset int32) ([]domain.Notification, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.NotificationStatus, sentAt *time.Time) (domain.Notification, error)
}

// Sender delivers a notification over the email side-channel.
type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Service facilitates notification service layer logic.
type Service struct {
	repo   Repo
	sender Sender
}

// New returns notification service.
func New(repo Repo, sender Sender) *Service {
	return &Service{repo: repo, sender: sender}
}

// Create persists the notification and attempts delivery. The returned
// record carries status Sent or Failed depending on the delivery outcome.
func (s *Service) Create(ctx context.Context, arg domain.CreateNotificationParams) (domain.Notification, error) {
	n := domain.Notification{
		ID:        uuid.New(),
		Recipient: arg.Recipient,
		Type:      arg.Type,
		Subject:   arg.Subject,
		Message:   arg.Message,
		Status:    domain.NotificationPending,
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return domain.Notification{}, err
	}

	return s.deliver(ctx, created)
}

// Get returns the notification with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	return s.repo.Get(ctx, id)
}

// ListByRecipient returns the recipient's notifications, most recent first.
func (s *Service) ListByRecipient(ctx context.Context, recipient string, limit, offset int32) ([]domain.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipient, limit, offset)
}

// Resend re-attempts delivery of a failed notification. Notifications in
// any other status are refused.
func (s *Service) Resend(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}

	if n.Status != domain.NotificationFailed {
		return domain.Notification{}, domain.ErrNotificationNotFailed
	}

	return s.deliver(ctx, n)
}

func (s *Service) deliver(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	if err := s.sender.Send(ctx, n); err != nil {
		l.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("notification delivery failed")
		return s.repo.SetStatus(ctx, n.ID, domain.NotificationFailed, nil)
	}

	sentAt := time.Now().UTC()

	return s.repo.SetStatus(ctx, n.ID, domain.NotificationSent, &sentAt)
}
