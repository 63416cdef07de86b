package upstream

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inercia/gemini-worker/pkg/envelope"
	"github.com/inercia/gemini-worker/pkg/factory"
	"github.com/inercia/gemini-worker/pkg/llm"
	"github.com/inercia/gemini-worker/pkg/retrypolicy"
)

// Config selects and configures the upstream provider the Caller dispatches
// requests to. Provider/BaseURL/SiteURL/AppName are fixed for the lifetime
// of the worker; the API key varies per call, supplied by the credential
// manager.
//
// ConnectTimeout/ReadTimeout/WriteTimeout/PoolTimeout mirror the four knobs
// spec.md §4.3 calls out (defaults 10/120/10/10s). Individual provider SDKs
// each expose at most a single round-trip timeout (threaded through as
// llm.ClientConfig.Timeout, set to ReadTimeout — the dominant one for a
// non-streaming chat completion), so the authoritative enforcement of the
// combined budget happens one level up: Generate derives a per-attempt
// context deadline from ConnectTimeout+ReadTimeout and every provider call
// is made with that context, guaranteeing a stalled connection or a stalled
// response body is aborted rather than hanging indefinitely, independent of
// whether a given SDK wires the single Timeout field through to its own
// *http.Client.
type Config struct {
	Provider   string
	BaseURL    string
	SiteURL    string
	AppName    string
	Timeout    time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolTimeout    time.Duration

	RetryPolicy retrypolicy.Config
}

// DefaultTimeouts matches spec.md §4.3's defaults (10/120/10/10s).
func DefaultTimeouts() (connect, read, write, pool time.Duration) {
	return 10 * time.Second, 120 * time.Second, 10 * time.Second, 10 * time.Second
}

// Result is the successful outcome of a Generate call.
type Result struct {
	Content   string
	Usage     envelope.TokenUsage
	ModelUsed string
}

// Caller dispatches generation requests against the configured upstream
// provider, applying the worker's own error classification and in-process
// retry policy on top of the llm.Client it wraps.
type Caller struct {
	cfg    Config
	f      *factory.Factory
	log    *zap.Logger

	mu      sync.Mutex
	clients map[string]llm.Client
}

// New builds a Caller for the given provider configuration.
func New(cfg Config, log *zap.Logger) *Caller {
	if cfg.RetryPolicy.MaxRetries == 0 && cfg.RetryPolicy.BaseDelay == 0 {
		cfg.RetryPolicy = retrypolicy.DefaultConfig()
	}
	if cfg.ConnectTimeout == 0 && cfg.ReadTimeout == 0 && cfg.WriteTimeout == 0 && cfg.PoolTimeout == 0 {
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout, cfg.PoolTimeout = DefaultTimeouts()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = cfg.ReadTimeout
	}
	return &Caller{
		cfg:     cfg,
		f:       factory.New(),
		log:     log,
		clients: make(map[string]llm.Client),
	}
}

// clientFor returns the cached llm.Client for key, creating one on first
// use with model as the client's default model (each request still names
// its own model in the ChatRequest). Clients are cheap, stateless wrappers
// around an HTTP client, so caching them per key avoids re-resolving
// provider config on every call.
func (c *Caller) clientFor(key, model string) (llm.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	client, err := c.f.CreateClient(llm.ClientConfig{
		Provider: c.cfg.Provider,
		Model:    model,
		APIKey:   key,
		BaseURL:  c.cfg.BaseURL,
		Timeout:  c.cfg.Timeout,
		Extra: map[string]string{
			"site_url": c.cfg.SiteURL,
			"app_name": c.cfg.AppName,
		},
	})
	if err != nil {
		return nil, err
	}

	c.clients[key] = client
	return client, nil
}

// Generate calls the upstream provider with key for a single request,
// retrying in-process on rate-limit and location-blocked errors per the
// configured retry policy. Every other classified error is returned
// immediately as terminal.
func (c *Caller) Generate(ctx context.Context, key string, req envelope.Request) (*Result, error) {
	client, err := c.clientFor(key, req.Model)
	if err != nil {
		return nil, &ClassifiedError{Kind: KindAuthFailed, Detail: err.Error(), Underlying: err}
	}

	chatReq := buildChatRequest(req)

	var lastErr *ClassifiedError
	for attempt := 0; ; attempt++ {
		resp, err := c.callWithDeadline(ctx, client, chatReq)
		if err == nil {
			return c.toResult(req, resp)
		}

		lastErr = classify(err)
		if !lastErr.Kind.Retryable() {
			return nil, lastErr
		}

		delay, ok := c.cfg.RetryPolicy.NextDelay(attempt)
		if !ok {
			return nil, lastErr
		}

		c.log.Warn("retrying upstream call after classified error",
			zap.String("request_id", req.RequestID.String()),
			zap.String("kind", lastErr.Kind.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil, &ClassifiedError{Kind: KindServerError, Detail: ctx.Err().Error(), Underlying: ctx.Err()}
		case <-time.After(delay):
		}
	}
}

// callWithDeadline bounds a single upstream attempt to ConnectTimeout plus
// ReadTimeout, so a connection that never establishes or a response body
// that never finishes arriving is aborted instead of hanging until the
// caller's own context (typically the process lifetime) is canceled.
func (c *Caller) callWithDeadline(ctx context.Context, client llm.Client, chatReq llm.ChatRequest) (*llm.ChatResponse, error) {
	budget := c.cfg.ConnectTimeout + c.cfg.ReadTimeout
	if budget <= 0 {
		return client.ChatCompletion(ctx, chatReq)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return client.ChatCompletion(attemptCtx, chatReq)
}

func buildChatRequest(req envelope.Request) llm.ChatRequest {
	var messages []llm.Message
	if req.SystemInstruction != "" {
		messages = append(messages, llm.NewTextMessage(llm.RoleSystem, req.SystemInstruction))
	}
	messages = append(messages, llm.NewTextMessage(llm.RoleUser, req.Prompt))

	chatReq := llm.ChatRequest{
		Model:     req.Model,
		Messages:  messages,
		Stop:      req.Parameters.StopSequences,
		Temperature: req.Parameters.Temperature,
		TopP:        req.Parameters.TopP,
		MaxTokens:   req.Parameters.MaxOutputTokens,
	}
	return chatReq
}

func (c *Caller) toResult(req envelope.Request, resp *llm.ChatResponse) (*Result, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &ClassifiedError{Kind: KindEmptyResponse, Detail: "upstream returned no choices"}
	}

	choice := resp.Choices[0]
	content := choice.Message.GetText()

	if strings.TrimSpace(content) == "" {
		detail := "upstream returned an empty response"
		if choice.FinishReason != "" {
			detail = fmt.Sprintf("%s (finish_reason=%s)", detail, choice.FinishReason)
		}
		return nil, &ClassifiedError{Kind: KindEmptyResponse, Detail: detail}
	}

	if choice.FinishReason == llm.FinishReasonLength {
		c.log.Warn("upstream response was truncated",
			zap.String("request_id", req.RequestID.String()),
			zap.String("model", resp.Model),
		)
	}

	return &Result{
		Content: content,
		Usage: envelope.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		ModelUsed: resp.Model,
	}, nil
}
