package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes persistent messages to arbitrary durable queues via
// the default exchange, declaring each destination queue idempotently on
// first use.
type Publisher struct {
	channel *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

// NewPublisher wraps an existing channel (typically the consumer's own
// channel, so publishes and consumer acks share one connection). Publisher
// confirms are not enabled on the channel.
func NewPublisher(channel *amqp.Channel) *Publisher {
	return &Publisher{channel: channel, declared: make(map[string]bool)}
}

func (p *Publisher) ensureQueue(queueName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declared[queueName] {
		return nil
	}
	if _, err := p.channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %q: %w", queueName, err)
	}
	p.declared[queueName] = true
	return nil
}

// Publish sends body to queueName as a persistent, JSON-typed message with
// the given correlation id.
func (p *Publisher) Publish(ctx context.Context, queueName, correlationID string, body []byte) error {
	if err := p.ensureQueue(queueName); err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		Body:          body,
	})
}
