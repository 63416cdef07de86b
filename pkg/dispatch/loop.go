// Package dispatch implements the worker's core per-message state machine:
// acquire a credential, call upstream, and either publish a response,
// requeue with a delay, or give up — all bounded, with no recursion.
package dispatch

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/inercia/gemini-worker/pkg/credential"
	"github.com/inercia/gemini-worker/pkg/envelope"
	"github.com/inercia/gemini-worker/pkg/queue"
	"github.com/inercia/gemini-worker/pkg/retrypolicy"
	"github.com/inercia/gemini-worker/pkg/upstream"
)

// Config controls the bounded-retry behavior of the dispatch loop.
type Config struct {
	// QueueMaxRetries is the number of times a request may be requeued
	// with a delay before a terminal error is emitted instead.
	QueueMaxRetries int
	// QueueSchedule is the escalating delay sequence applied per
	// RetryCount when a request is requeued.
	QueueSchedule []time.Duration
	// DefaultModel is substituted for a request's omitted model field,
	// configured from OPENROUTER_MODEL (see pkg/config). Falls back to
	// envelope.DefaultModel when empty.
	DefaultModel string
}

// credentialSource rotates through a pool of upstream API keys. Satisfied
// by *credential.Manager.
type credentialSource interface {
	Acquire() (string, bool)
	MarkRateLimited(key string)
}

// generator performs the actual upstream call. Satisfied by
// *upstream.Caller.
type generator interface {
	Generate(ctx context.Context, key string, req envelope.Request) (*upstream.Result, error)
}

// responsePublisher publishes a reply onto a named queue. Satisfied by
// *queue.Publisher.
type responsePublisher interface {
	Publish(ctx context.Context, queueName, correlationID string, body []byte) error
}

// delayer requeues a message for later redelivery. Satisfied by
// *queue.DelayRequeuer.
type delayer interface {
	Requeue(ctx context.Context, delay time.Duration, correlationID string, body []byte) error
}

// Loop wires together credential rotation, the upstream caller, and the
// queue publishers into the worker's message-processing logic.
type Loop struct {
	credentials credentialSource
	caller      generator
	publisher   responsePublisher
	delay       delayer
	cfg         Config
	log         *zap.Logger
}

// New builds a Loop.
func New(credentials *credential.Manager, caller *upstream.Caller, publisher *queue.Publisher, delay *queue.DelayRequeuer, cfg Config, log *zap.Logger) *Loop {
	return &Loop{credentials: credentials, caller: caller, publisher: publisher, delay: delay, cfg: cfg, log: log}
}

// Handle is the queue.Handler entry point: it decodes the delivery body and
// dispatches it, rejecting the delivery without requeue only when the body
// itself is malformed (poison). Every other outcome is settled here rather
// than by the consumer, since a single delivery may result in a delay-queue
// requeue rather than a terminal response: the delivery is acked once the
// response or the requeued copy has been published, and left unacked for
// broker redelivery when that publish fails.
func (l *Loop) Handle(ctx context.Context, delivery amqp.Delivery) error {
	req, err := envelope.DecodeRequestWithDefaultModel(delivery.Body, l.cfg.DefaultModel)
	if err != nil {
		return err
	}

	l.process(ctx, delivery, *req)
	return nil
}

func (l *Loop) process(ctx context.Context, delivery amqp.Delivery, req envelope.Request) {
	key, ok := l.credentials.Acquire()
	if !ok {
		l.handleNoKeyAvailable(ctx, delivery, req)
		return
	}

	start := time.Now()
	result, err := l.caller.Generate(ctx, key, req)
	if err == nil {
		l.publishSuccess(ctx, delivery, req, result, time.Since(start))
		return
	}

	ce, classified := err.(*upstream.ClassifiedError)
	if classified && ce.Kind == upstream.KindRateLimited {
		l.credentials.MarkRateLimited(key)
		l.retryOnceWithAnotherKey(ctx, delivery, req)
		return
	}

	l.publishError(ctx, delivery, req, err)
}

// retryOnceWithAnotherKey is the bounded replacement for the original
// worker's recursive "find another key and call yourself again" retry: it
// tries exactly one more key, then settles the message either way, instead
// of recursing for as many keys as are configured.
func (l *Loop) retryOnceWithAnotherKey(ctx context.Context, delivery amqp.Delivery, req envelope.Request) {
	key, ok := l.credentials.Acquire()
	if !ok {
		l.handleNoKeyAvailable(ctx, delivery, req)
		return
	}

	start := time.Now()
	result, err := l.caller.Generate(ctx, key, req)
	if err == nil {
		l.publishSuccess(ctx, delivery, req, result, time.Since(start))
		return
	}

	if ce, ok := err.(*upstream.ClassifiedError); ok && ce.Kind == upstream.KindRateLimited {
		l.credentials.MarkRateLimited(key)
	}
	l.publishError(ctx, delivery, req, err)
}

// handleNoKeyAvailable either requeues the request onto a delay queue for
// a later attempt, or — once QueueMaxRetries is exhausted — publishes a
// terminal error response.
func (l *Loop) handleNoKeyAvailable(ctx context.Context, delivery amqp.Delivery, req envelope.Request) {
	if req.RetryCount >= l.cfg.QueueMaxRetries {
		l.publishTerminal(ctx, delivery, req, fmt.Sprintf("rate limit exceeded after %d retries", req.RetryCount))
		return
	}

	delay := retrypolicy.QueueDelay(req.RetryCount, l.cfg.QueueSchedule)
	retried := req.WithRetry()

	body, err := retried.Encode()
	if err != nil {
		l.log.Error("failed to encode requeued request", zap.Error(err))
		l.ackOrLog(delivery)
		return
	}

	if err := l.delay.Requeue(ctx, delay, req.RequestID.String(), body); err != nil {
		l.log.Error("failed to requeue request onto delay queue, leaving delivery unacked for redelivery",
			zap.String("request_id", req.RequestID.String()),
			zap.Error(err))
		return
	}
	l.ackOrLog(delivery)
}

func (l *Loop) publishSuccess(ctx context.Context, delivery amqp.Delivery, req envelope.Request, result *upstream.Result, elapsed time.Duration) {
	resp := envelope.Success(req, result.Content, result.Usage, result.ModelUsed, elapsed)
	l.publish(ctx, delivery, req, resp)
}

func (l *Loop) publishError(ctx context.Context, delivery amqp.Delivery, req envelope.Request, err error) {
	l.publishTerminal(ctx, delivery, req, err.Error())
}

func (l *Loop) publishTerminal(ctx context.Context, delivery amqp.Delivery, req envelope.Request, message string) {
	resp := envelope.Failure(req, message)
	l.publish(ctx, delivery, req, resp)
}

// publish encodes and publishes resp. Per spec, a publish failure is a
// fatal per-message condition: the original delivery is left unacked so
// the broker redelivers it after reconnect, rather than silently dropping
// the response. Only a successful publish (or an encode failure, which
// would poison every redelivery identically) reaches the ack.
func (l *Loop) publish(ctx context.Context, delivery amqp.Delivery, req envelope.Request, resp envelope.Response) {
	body, err := resp.Encode()
	if err != nil {
		l.log.Error("failed to encode response", zap.Error(err))
		l.ackOrLog(delivery)
		return
	}

	if err := l.publisher.Publish(ctx, req.CallbackQueue, req.RequestID.String(), body); err != nil {
		l.log.Error("failed to publish response, leaving delivery unacked for redelivery",
			zap.String("request_id", req.RequestID.String()),
			zap.String("callback_queue", req.CallbackQueue),
			zap.Error(err))
		return
	}
	l.ackOrLog(delivery)
}

func (l *Loop) ackOrLog(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		l.log.Error("failed to ack delivery", zap.Error(err))
	}
}

