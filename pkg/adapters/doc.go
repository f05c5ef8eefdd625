// Package adapters translates a single text prompt, with an optional image,
// into each provider's wire format and back into plain text.
//
// openai covers OpenAI and any chat-completions compatible host such as xAI
// Grok; anthropic speaks the Messages API; gemini speaks generateContent.
// Non-2xx answers surface as *StatusError so callers can inspect the status
// code and upstream message.
package adapters
