// Package deepseek provides an LLM client for DeepSeek models.
//
// This provider implements the llm.Client interface for DeepSeek's API,
// supporting both streaming and non-streaming chat completions with
// comprehensive tool calling capabilities.
//
// Key features:
//   - Text-based chat completions with streaming support
//   - Tool calling and function execution support
//   - Comprehensive error handling and validation
//   - Configurable timeouts and model selection
//   - File content handling (text files inlined, others converted to text
//     descriptions); image content is rejected, as the model info reports
//     no vision support
//
// The factory package registers this client under the name "deepseek" in
// its init function, making it available through the factory.
//
// Usage:
//
//	config := llm.ClientConfig{
//	    Provider: "deepseek",
//	    APIKey:   "your-api-key",
//	    Model:    "deepseek-chat",
//	}
//	client, err := factory.New().CreateClient(config)
package deepseek
