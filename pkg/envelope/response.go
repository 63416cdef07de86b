package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status values for Response.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TokenUsage mirrors the upstream usage accounting, zero-valued when the
// upstream doesn't report it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the envelope published to the request's callback queue.
// Unlike the original worker's schema, Metadata is always carried through
// from the request so a caller can correlate asynchronous replies without
// a side channel.
type Response struct {
	RequestID         uuid.UUID              `json:"request_id"`
	Status            string                 `json:"status"`
	Content           string                 `json:"content,omitempty"`
	Error             string                 `json:"error,omitempty"`
	Usage             *TokenUsage            `json:"usage,omitempty"`
	Timestamp         time.Time              `json:"timestamp"`
	ProcessingTimeMs  int64                  `json:"processing_time_ms,omitempty"`
	ModelUsed         string                 `json:"model_used,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// Success builds a success response envelope for req.
func Success(req Request, content string, usage TokenUsage, modelUsed string, processingTime time.Duration) Response {
	return Response{
		RequestID:        req.RequestID,
		Status:           StatusSuccess,
		Content:          content,
		Usage:            &usage,
		Timestamp:        time.Now().UTC(),
		ProcessingTimeMs: processingTime.Milliseconds(),
		ModelUsed:        modelUsed,
		Metadata:         req.Metadata,
	}
}

// Failure builds an error response envelope for req.
func Failure(req Request, message string) Response {
	return Response{
		RequestID: req.RequestID,
		Status:    StatusError,
		Error:     message,
		Timestamp: time.Now().UTC(),
		Metadata:  req.Metadata,
	}
}

// Encode serializes the response for publication.
func (r Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}
