// Command worker consumes generation requests from RabbitMQ, dispatches
// them against an upstream LLM provider with credential rotation and
// retry/backoff, and publishes the results to each request's callback
// queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/inercia/gemini-worker/pkg/config"
	"github.com/inercia/gemini-worker/pkg/credential"
	"github.com/inercia/gemini-worker/pkg/dispatch"
	"github.com/inercia/gemini-worker/pkg/logging"
	"github.com/inercia/gemini-worker/pkg/queue"
	"github.com/inercia/gemini-worker/pkg/upstream"

	_ "github.com/inercia/gemini-worker/pkg/factory" // registers provider constructors
)

// reconnectPolicy bounds the backoff between redial attempts after the
// broker connection drops. Unlike retrypolicy.Config (which gives up after
// MaxRetries), reconnecting has no attempt cap: spec.md §7 treats a broker
// outage as recoverable by reconnecting, not as a reason to exit, so the
// worker keeps redialing at the capped delay until it succeeds or the
// process receives a shutdown signal.
var reconnectPolicy = struct {
	base, max time.Duration
}{base: 2 * time.Second, max: 30 * time.Second}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	creds, err := credential.New(cfg.APIKeys, credential.Options{
		MaxPerMinute: cfg.KeysMaxPerMinute,
		Cooldown:     cfg.KeysCooldown,
	})
	if err != nil {
		return fmt.Errorf("building credential manager: %w", err)
	}

	caller := upstream.New(upstream.Config{
		Provider:    cfg.UpstreamProvider,
		BaseURL:     cfg.UpstreamBaseURL,
		SiteURL:     cfg.UpstreamSiteURL,
		AppName:     cfg.UpstreamSiteName,
		RetryPolicy: cfg.RetryPolicy,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("worker starting",
		zap.String("request_queue", cfg.RequestQueue),
		zap.String("response_queue", cfg.ResponseQueue),
		zap.String("upstream_provider", cfg.UpstreamProvider),
		zap.Int("api_keys", len(cfg.APIKeys)),
	)

	return consumeUntilShutdown(ctx, cfg, creds, caller, log)
}

// consumeUntilShutdown owns the broker connection's lifetime: it dials,
// consumes, and on any connection/channel failure redials and redeclares
// topology from scratch, per spec.md §4.4/§7. It only returns once ctx is
// canceled (graceful shutdown) — a broker outage is always retried, never
// treated as a reason to exit.
func consumeUntilShutdown(ctx context.Context, cfg *config.Config, creds *credential.Manager, caller *upstream.Caller, log *zap.Logger) error {
	backoff := reconnectPolicy.base

	for {
		err := connectAndConsume(ctx, cfg, creds, caller, log)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			continue
		}

		log.Error("broker connection lost, reconnecting",
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > reconnectPolicy.max {
			backoff = reconnectPolicy.max
		}
	}
}

// connectAndConsume dials the broker once, redeclares the request queue and
// every queue-backed collaborator against the fresh channel, and blocks
// until ctx is canceled or the connection drops. A successful, graceful
// return (ctx canceled) resets nothing; an error return tells the caller to
// redial.
func connectAndConsume(ctx context.Context, cfg *config.Config, creds *credential.Manager, caller *upstream.Caller, log *zap.Logger) error {
	consumer, err := queue.NewConsumer(cfg.RabbitMQURL, cfg.RequestQueue, cfg.Prefetch, log)
	if err != nil {
		return fmt.Errorf("connecting to rabbitmq: %w", err)
	}
	defer consumer.Close()

	publisher := queue.NewPublisher(consumer.Channel())
	delayRequeuer := queue.NewDelayRequeuer(consumer.Channel(), cfg.RequestQueue)

	loop := dispatch.New(creds, caller, publisher, delayRequeuer, dispatch.Config{
		QueueMaxRetries: cfg.QueueMaxRetries,
		QueueSchedule:   cfg.QueueSchedule,
		DefaultModel:    cfg.UpstreamModel,
	}, log)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consumer.Consume(ctx, "gemini-worker", loop.Handle)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, draining in-flight handlers")
		<-consumeErr
		consumer.Drain()
		return nil
	case err := <-consumeErr:
		consumer.Drain()
		return err
	}
}
