package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DelayRequeuer implements broker-side scheduled redelivery: since AMQP
// 0-9-1 has no native scheduler, a message that needs to wait is published
// onto a dedicated per-delay queue with a message TTL equal to the delay;
// once the TTL expires, the broker dead-letters it back onto the original
// queue via the default exchange.
type DelayRequeuer struct {
	channel     *amqp.Channel
	sourceQueue string

	mu       sync.Mutex
	declared map[time.Duration]bool
}

// NewDelayRequeuer builds a requeuer that returns messages to sourceQueue
// after their delay elapses.
func NewDelayRequeuer(channel *amqp.Channel, sourceQueue string) *DelayRequeuer {
	return &DelayRequeuer{channel: channel, sourceQueue: sourceQueue, declared: make(map[time.Duration]bool)}
}

func (d *DelayRequeuer) delayQueueName(delay time.Duration) string {
	return fmt.Sprintf("%s.delay.%ds", d.sourceQueue, int(delay.Seconds()))
}

func (d *DelayRequeuer) ensureDelayQueue(delay time.Duration) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := d.delayQueueName(delay)
	if d.declared[delay] {
		return name, nil
	}

	ttlMs := delay.Milliseconds()
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": d.sourceQueue,
		"x-message-ttl":             ttlMs,
	}

	if _, err := d.channel.QueueDeclare(name, true, false, false, false, args); err != nil {
		return "", fmt.Errorf("queue: declare delay queue %q: %w", name, err)
	}

	d.declared[delay] = true
	return name, nil
}

// Requeue publishes body onto the delay queue for delay, with the same
// persistence and correlation semantics as a normal publish. The message
// reappears on the source queue once delay elapses.
func (d *DelayRequeuer) Requeue(ctx context.Context, delay time.Duration, correlationID string, body []byte) error {
	name, err := d.ensureDelayQueue(delay)
	if err != nil {
		return err
	}

	return d.channel.PublishWithContext(ctx, "", name, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		Expiration:    fmt.Sprintf("%d", delay.Milliseconds()),
		Body:          body,
	})
}
