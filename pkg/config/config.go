// Package config loads the worker's configuration from the environment,
// following the same os.Getenv-with-fallback pattern the llm package uses
// for its own provider configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inercia/gemini-worker/pkg/retrypolicy"
)

// Config holds every environment-derived setting the worker needs.
type Config struct {
	RabbitMQURL   string
	RequestQueue  string
	ResponseQueue string
	Prefetch      int

	UpstreamProvider string
	UpstreamBaseURL  string
	UpstreamModel    string
	UpstreamSiteURL  string
	UpstreamSiteName string

	APIKeys []string

	KeysMaxPerMinute  int
	KeysCooldown      time.Duration

	RetryPolicy   retrypolicy.Config
	QueueSchedule []time.Duration
	QueueMaxRetries int

	LogLevel  string
	LogFormat string
}

// HTTP_PROXY is read by net/http's ProxyFromEnvironment, which every
// provider client in pkg/providers uses via http.DefaultTransport — setting
// HTTP_PROXY in the process environment is sufficient, nothing in this
// package needs to thread it through explicitly. An empty string must be
// treated as unset, so a deployment that sets HTTP_PROXY="" to disable a
// previously-set proxy doesn't fall through to a proxy auto-detected some
// other way.
func init() {
	if v, ok := os.LookupEnv("HTTP_PROXY"); ok && v == "" {
		os.Unsetenv("HTTP_PROXY")
	}
}

// Load reads and validates configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		RequestQueue:  getenvDefault("REQUEST_QUEUE", "gemini.requests"),
		ResponseQueue: getenvDefault("RESPONSE_QUEUE", "gemini.responses"),
		Prefetch:      getenvIntDefault("WORKER_PREFETCH_COUNT", 10),

		UpstreamProvider: getenvDefault("UPSTREAM_PROVIDER", "openrouter"),
		UpstreamBaseURL:  getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		UpstreamModel:    getenvDefault("OPENROUTER_MODEL", "google/gemini-2.5-flash"),
		UpstreamSiteURL:  os.Getenv("OPENROUTER_SITE_URL"),
		UpstreamSiteName: os.Getenv("OPENROUTER_SITE_NAME"),

		LogLevel:  getenvDefault("LOG_LEVEL", "info"),
		LogFormat: getenvDefault("LOG_FORMAT", "json"),
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("config: RABBITMQ_URL is required")
	}

	keys, err := parseAPIKeys(os.Getenv("OPENROUTER_API_KEYS"))
	if err != nil {
		return nil, err
	}
	cfg.APIKeys = keys

	maxPerMinute, err := getenvIntRange("KEYS_MAX_PER_MINUTE", 10, 1, 100)
	if err != nil {
		return nil, err
	}
	cfg.KeysMaxPerMinute = maxPerMinute

	cooldownSecs, err := getenvIntRange("KEYS_COOLDOWN_SECONDS", 60, 10, 3600)
	if err != nil {
		return nil, err
	}
	cfg.KeysCooldown = time.Duration(cooldownSecs) * time.Second

	schedule, err := parseRetryDelays(getenvDefault("QUEUE_RETRY_DELAYS", "60,600,3600,86400"))
	if err != nil {
		return nil, err
	}
	cfg.QueueSchedule = schedule

	maxRetries, err := getenvIntRange("QUEUE_MAX_RETRIES", 4, 1, 10)
	if err != nil {
		return nil, err
	}
	cfg.QueueMaxRetries = maxRetries

	cfg.RetryPolicy = retrypolicy.DefaultConfig()

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvIntRange(key string, def, min, max int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("config: %s must be between %d and %d, got %d", key, min, max, n)
	}
	return n, nil
}

func parseAPIKeys(raw string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("config: OPENROUTER_API_KEYS must contain at least one key")
	}
	return keys, nil
}

func parseRetryDelays(raw string) ([]time.Duration, error) {
	var delays []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		secs, err := strconv.Atoi(part)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("config: QUEUE_RETRY_DELAYS entry %q must be a positive integer", part)
		}
		delays = append(delays, time.Duration(secs)*time.Second)
	}
	if len(delays) == 0 {
		return nil, fmt.Errorf("config: QUEUE_RETRY_DELAYS must contain at least one delay")
	}
	return delays, nil
}
