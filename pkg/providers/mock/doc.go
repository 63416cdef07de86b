// Package mock provides a mock client implementation for testing go-llm applications.
//
// This package implements the llm.Client interface with configurable responses,
// errors, and behaviors for comprehensive testing of LLM-based applications.
//
// Features:
// - Pre-configured responses and errors
// - Intelligent context-aware responses
// - Tool call simulation
// - Streaming response simulation
// - Latency and failure rate simulation
// - Conversation state storage (stored values do not affect responses)
// - Call logging and assertions
//
// The mock client is ideal for unit tests, integration tests, and development
// scenarios where you need predictable LLM behavior without actual API calls.
package mock
