// Package queue implements the broker side of the worker: consuming
// requests, publishing responses, and requeuing messages onto per-delay
// auxiliary queues when a retry needs to happen later instead of now.
package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes a single request-queue delivery. On a nil error the
// consumer does nothing further: the handler is responsible for acking the
// delivery itself. Any non-nil error rejects it without requeue, since a
// message that reached the handler and still failed is treated as poison —
// anything retryable is handled internally by publishing to a delay queue
// and acking the original, never by returning an error here.
type Handler func(ctx context.Context, delivery amqp.Delivery) error

// Consumer wraps a single AMQP channel bound to one durable queue.
type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	log       *zap.Logger

	inFlight sync.WaitGroup
}

// NewConsumer connects to url, declares queueName as a durable queue, and
// applies the given prefetch count as the channel's QoS.
func NewConsumer(url, queueName string, prefetch int, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: declare %q: %w", queueName, err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: set qos: %w", err)
	}

	return &Consumer{conn: conn, channel: ch, queueName: queueName, log: log}, nil
}

// Channel exposes the underlying AMQP channel, used by DelayRequeuer to
// publish onto delay queues declared against the same connection.
func (c *Consumer) Channel() *amqp.Channel {
	return c.channel
}

// Consume registers a consumer on the queue and dispatches each delivery
// to handle in its own goroutine, bounded by the channel's prefetch count.
// It blocks until ctx is canceled or the underlying delivery channel
// closes (e.g. on a connection drop).
func (c *Consumer) Consume(ctx context.Context, consumerTag string, handle Handler) error {
	deliveries, err := c.channel.Consume(c.queueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume %q: %w", c.queueName, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("queue: delivery channel for %q closed", c.queueName)
			}
			c.inFlight.Add(1)
			go c.dispatch(ctx, delivery, handle)
		}
	}
}

// Drain blocks until every in-flight handler goroutine started by Consume
// has returned. Call it after ctx is canceled to let deliveries already
// being processed finish (and be acked) before the connection is closed.
func (c *Consumer) Drain() {
	c.inFlight.Wait()
}

func (c *Consumer) dispatch(ctx context.Context, delivery amqp.Delivery, handle Handler) {
	defer c.inFlight.Done()

	if err := handle(ctx, delivery); err != nil {
		c.log.Error("rejecting poison message without requeue",
			zap.String("queue", c.queueName),
			zap.String("correlation_id", delivery.CorrelationId),
			zap.Error(err),
		)
		if rejErr := delivery.Reject(false); rejErr != nil {
			c.log.Error("failed to reject delivery", zap.Error(rejErr))
		}
	}
}

// Close tears down the channel and connection.
func (c *Consumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
