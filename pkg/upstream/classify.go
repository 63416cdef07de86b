package upstream

import (
	"context"
	"errors"
	"strings"

	"github.com/inercia/gemini-worker/pkg/llm"
)

// classify turns any error returned by an llm.Client into a ClassifiedError.
// The structure mirrors the OpenRouter provider's own error conversion: a
// status-code switch first, refined by a substring pass over the message
// for cases the status code alone doesn't disambiguate (notably location
// blocking, which upstream APIs report as a 400 or 403 with no dedicated
// code).
func classify(err error) *ClassifiedError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClassifiedError{Kind: KindServerError, Detail: err.Error(), Underlying: err}
	}

	var llmErr *llm.Error
	if !errors.As(err, &llmErr) {
		return &ClassifiedError{Kind: KindServerError, Detail: err.Error(), Underlying: err}
	}

	kind := kindFromStatusCode(llmErr.StatusCode)
	msg := strings.ToLower(llmErr.Message)

	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		kind = KindRateLimited
	case strings.Contains(msg, "location") || strings.Contains(msg, "region") || strings.Contains(msg, "territory"):
		kind = KindLocationBlocked
	}

	return &ClassifiedError{Kind: kind, Detail: llmErr.Message, Underlying: err}
}

func kindFromStatusCode(status int) Kind {
	switch {
	case status == 401:
		return KindAuthFailed
	case status == 400:
		return KindBadRequest
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindServerError
	}
}
