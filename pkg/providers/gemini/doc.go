// Package gemini provides an LLM client for Google Gemini models.
//
// This provider implements the llm.Client interface for Google's Gemini API
// using the official Google Generative AI library. It supports both streaming
// and non-streaming chat completions with text and image inputs.
//
// Key features:
//   - Text and multimodal (text + image) content support
//   - Streaming chat completions
//   - Automatic error conversion to standardized format
//   - Response format instructions via prompt engineering
//   - Temperature and token limit controls
//
// The factory package registers this client under the name "gemini" in its
// init function, making it available through the factory.
//
// Usage:
//
//	config := llm.ClientConfig{
//	    Provider: "gemini",
//	    APIKey:   "your-api-key",
//	    Model:    "gemini-1.5-flash",
//	}
//	client, err := factory.New().CreateClient(config)
package gemini
