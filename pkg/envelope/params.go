// Package envelope defines the wire schema exchanged over the request and
// response queues: generation parameters, the inbound request envelope, and
// the outbound response envelope.
package envelope

import "fmt"

// GenerationParameters mirrors the sampling knobs accepted by the upstream
// chat completion APIs. All fields are optional on the wire; Go zero values
// are never treated as "unset" here, so pointers carry presence.
type GenerationParameters struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	TopP             *float32 `json:"top_p,omitempty"`
	MaxOutputTokens  *int     `json:"max_output_tokens,omitempty"`
	StopSequences    []string `json:"stop_sequences,omitempty"`
}

// Defaults applied when a field is absent, matching the original worker's
// Pydantic model defaults.
const (
	DefaultTemperature     float32 = 0.7
	DefaultTopP            float32 = 0.95
	DefaultMaxOutputTokens int     = 8192
)

// Validate checks the numeric ranges the original schema enforced.
func (p GenerationParameters) Validate() error {
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", *p.Temperature)
	}
	if p.TopP != nil && (*p.TopP < 0 || *p.TopP > 1) {
		return fmt.Errorf("top_p must be between 0 and 1, got %v", *p.TopP)
	}
	if p.MaxOutputTokens != nil && (*p.MaxOutputTokens < 1 || *p.MaxOutputTokens > 32768) {
		return fmt.Errorf("max_output_tokens must be between 1 and 32768, got %v", *p.MaxOutputTokens)
	}
	return nil
}

// WithDefaults returns a copy with unset fields filled in.
func (p GenerationParameters) WithDefaults() GenerationParameters {
	if p.Temperature == nil {
		t := DefaultTemperature
		p.Temperature = &t
	}
	if p.TopP == nil {
		tp := DefaultTopP
		p.TopP = &tp
	}
	if p.MaxOutputTokens == nil {
		m := DefaultMaxOutputTokens
		p.MaxOutputTokens = &m
	}
	return p
}
