// Package eventpublisher emits settlement events to RabbitMQ.
package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// PublisherRMQ publishes JSON events to a topic exchange.
type PublisherRMQ struct {
	channel  *amqp.Channel
	exchange string
}

// NewPublisherRMQ declares the exchange and returns the publisher.
func NewPublisherRMQ(ch *amqp.Channel, exchange string) (*PublisherRMQ, error) {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &PublisherRMQ{channel: ch, exchange: exchange}, nil
}

// Publish sends event under routingKey with persistent delivery.
func (p *PublisherRMQ) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("routing_key", routingKey).Msg("event published")

	return nil
}
