package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultModel and DefaultCallbackQueue mirror the original worker's schema
// defaults so a request that omits them still behaves the same way.
const (
	DefaultModel         = "google/gemini-2.5-flash"
	DefaultCallbackQueue = "gemini.responses"
)

// Request is the decoded form of a single request-queue message.
type Request struct {
	RequestID         uuid.UUID              `json:"request_id"`
	Prompt            string                 `json:"prompt"`
	Model             string                 `json:"model,omitempty"`
	Parameters        GenerationParameters   `json:"parameters,omitempty"`
	SystemInstruction string                 `json:"system_instruction,omitempty"`
	CallbackQueue     string                 `json:"callback_queue,omitempty"`
	Timestamp         time.Time              `json:"timestamp,omitempty"`
	RetryCount        int                    `json:"retry_count,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// ValidationError is a structured decode/validation failure, shaped like
// llm.Error so the dispatcher can log and classify it uniformly.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DecodeRequest strictly decodes a request-queue message body: unknown
// fields are rejected, required fields are checked, and defaults are
// applied. A non-nil error here always means the message is poison and must
// be rejected without requeue — it will never succeed on redelivery.
//
// The request's model falls back to DefaultModel. Callers that have a
// configured default (OPENROUTER_MODEL; see pkg/config) should use
// DecodeRequestWithDefaultModel instead so a request that omits its model
// picks up the operator's configured default rather than this package's
// fixed constant.
func DecodeRequest(body []byte) (*Request, error) {
	return DecodeRequestWithDefaultModel(body, DefaultModel)
}

// DecodeRequestWithDefaultModel is DecodeRequest with the fallback model for
// an omitted request.model field supplied by the caller instead of fixed to
// DefaultModel.
func DecodeRequestWithDefaultModel(body []byte, defaultModel string) (*Request, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, &ValidationError{Code: "malformed_json", Message: fmt.Sprintf("invalid request body: %v", err)}
	}

	if req.RequestID == uuid.Nil {
		return nil, &ValidationError{Code: "missing_request_id", Message: "request_id is required"}
	}
	if req.Prompt == "" {
		return nil, &ValidationError{Code: "missing_prompt", Message: "prompt must not be empty"}
	}
	if err := req.Parameters.Validate(); err != nil {
		return nil, &ValidationError{Code: "invalid_parameters", Message: err.Error()}
	}
	if req.RetryCount < 0 {
		return nil, &ValidationError{Code: "invalid_retry_count", Message: "retry_count must not be negative"}
	}

	if req.Model == "" {
		if defaultModel == "" {
			defaultModel = DefaultModel
		}
		req.Model = defaultModel
	}
	if req.CallbackQueue == "" {
		req.CallbackQueue = DefaultCallbackQueue
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}
	req.Parameters = req.Parameters.WithDefaults()

	return &req, nil
}

// WithRetry returns a copy of the request with retry_count incremented and
// the timestamp refreshed, ready to be requeued onto a delay queue.
func (r Request) WithRetry() Request {
	r.RetryCount++
	r.Timestamp = time.Now().UTC()
	return r
}

// Encode serializes the request back to its wire form, used when
// requeuing onto a delay queue.
func (r Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}
