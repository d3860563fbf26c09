// Package notificationrepo manages repository layer of notifications.
package notificationrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/dbpkg"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
)

// RepoPGS facilitates notification repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns notification RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const notificationColumns = `
	id, recipient, type, subject, message, status, created_at, sent_at
`

const createQuery = `
INSERT INTO notifications (id, recipient, type, subject, message, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING` + notificationColumns

// Create persists the notification and returns it.
func (r *RepoPGS) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		n.ID, n.Recipient, n.Type, n.Subject, n.Message, n.Status)

	created, err := scanNotification(row)
	if err != nil {
		l.Error().Err(err).Send()
		return created, errorspkg.ErrInternal
	}

	return created, nil
}

const getQuery = `
SELECT` + notificationColumns + `
FROM notifications
WHERE id = $1
`

// Get returns the notification with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return n, domain.ErrNotificationNotFound
		}

		l.Error().Err(err).Send()

		return n, errorspkg.ErrInternal
	}

	return n, nil
}

const listByRecipientQuery = `
SELECT` + notificationColumns + `
FROM notifications
WHERE recipient = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

// ListByRecipient returns the recipient's notifications, most recent first.
func (r *RepoPGS) ListByRecipient(ctx context.Context, recipient string, limit, offset int32) ([]domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByRecipientQuery, recipient, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	notifications := []domain.Notification{}

	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return notifications, nil
}

const setStatusQuery = `
UPDATE notifications
SET status = $1, sent_at = $2
WHERE id = $3
RETURNING` + notificationColumns

// SetStatus updates the delivery status and sent-at timestamp.
func (r *RepoPGS) SetStatus(ctx context.Context, id uuid.UUID, status domain.NotificationStatus, sentAt *time.Time) (domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	var nullSentAt sql.NullTime
	if sentAt != nil {
		nullSentAt = sql.NullTime{Time: *sentAt, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, setStatusQuery, status, nullSentAt, id)

	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return n, domain.ErrNotificationNotFound
		}

		l.Error().Err(err).Send()

		return n, errorspkg.ErrInternal
	}

	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row scanner) (domain.Notification, error) {
	var (
		n      domain.Notification
		sentAt sql.NullTime
	)

	err := row.Scan(
		&n.ID, &n.Recipient, &n.Type, &n.Subject, &n.Message,
		&n.Status, &n.CreatedAt, &sentAt)
	if err != nil {
		return n, err
	}

	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}

	return n, nil
}
