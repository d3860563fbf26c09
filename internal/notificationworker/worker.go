// Package notificationworker consumes settlement events and turns them into
// notification records delivered over the email side-channel.
package notificationworker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/internal/transactionservice"
)

// NotificationCreator persists and delivers one notification.
type NotificationCreator interface {
	Create(ctx context.Context, arg domain.CreateNotificationParams) (domain.Notification, error)
}

const handleTimeout = 5 * time.Second

// Worker consumes the settlement events queue.
type Worker struct {
	channel       *amqp.Channel
	notifications NotificationCreator
	exchange      string
	queue         string
}

// New binds the queue to the exchange under the settlement routing key and
// returns the worker.
func New(ch *amqp.Channel, notifications NotificationCreator, exchange, queue string) (*Worker, error) {
	err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(q.Name, transactionservice.SettledRoutingKey, exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Worker{
		channel:       ch,
		notifications: notifications,
		exchange:      exchange,
		queue:         q.Name,
	}, nil
}

// Run consumes messages until ctx is canceled or the channel closes.
func (w *Worker) Run(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	msgs, err := w.channel.Consume(w.queue, "notification_worker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	notifyClose := make(chan *amqp.Error, 1)
	w.channel.NotifyClose(notifyClose)

	l.Info().Str("queue", w.queue).Msg("notification worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-notifyClose:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}

			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}

			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	l := zerolog.Ctx(ctx)

	handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	var event transactionservice.SettledEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		l.Error().Err(err).Msg("malformed settlement event")

		if err := d.Nack(false, false); err != nil {
			l.Error().Err(err).Msg("failed to nack message")
		}

		return
	}

	if _, err := w.notifications.Create(handleCtx, Compose(event)); err != nil {
		l.Error().Err(err).Str("reference_number", event.ReferenceNumber).
			Msg("failed to create notification")

		if err := d.Nack(false, true); err != nil {
			l.Error().Err(err).Msg("failed to nack message")
		}

		return
	}

	if err := d.Ack(false); err != nil {
		l.Error().Err(err).Msg("failed to ack message")
	}
}

// Compose maps a settlement event to the notification sent to the account
// owner.
func Compose(event transactionservice.SettledEvent) domain.CreateNotificationParams {
	arg := domain.CreateNotificationParams{
		Recipient: event.Owner,
	}

	if event.Status == domain.StatusCompleted {
		arg.Type = domain.NotificationTransactionCompleted
		arg.Subject = fmt.Sprintf("Transaction %s completed", event.ReferenceNumber)
		arg.Message = fmt.Sprintf(
			"Your %s of %s %s on account %s has been completed.",
			event.Type, event.Amount, event.Currency, event.SourceAccountNumber)

		return arg
	}

	arg.Type = domain.NotificationTransactionFailed
	arg.Subject = fmt.Sprintf("Transaction %s failed", event.ReferenceNumber)
	arg.Message = fmt.Sprintf(
		"Your %s of %s %s on account %s failed: %s.",
		event.Type, event.Amount, event.Currency, event.SourceAccountNumber, event.FailureReason)

	return arg
}
