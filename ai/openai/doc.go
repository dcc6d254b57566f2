// Package openai implements the ai interfaces against OpenAI-compatible
// APIs via langchaingo. Local servers such as Ollama, LocalAI, and vLLM
// expose this API shape; no authentication token is required for them.
package openai
