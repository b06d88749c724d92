// Package openai implements the ai.Embedder interface against
// OpenAI-compatible embedding endpoints (OpenAI, Ollama, LocalAI, vLLM).
package openai
