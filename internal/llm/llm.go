package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a model invocation.
type Message struct {
	Role    string
	Content string
}

// InvokeRequest configures a single model invocation. Model and temperature
// travel with the request so callers can swap models at runtime without
// rebuilding the client.
type InvokeRequest struct {
	Model       string
	Temperature float64
	Messages    []Message
}

// Client is an opaque text-completion service.
type Client interface {
	Invoke(ctx context.Context, req InvokeRequest) (string, error)
}

// Embedder turns text into a numeric vector for semantic retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Supported backends.
const (
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
)

// New creates a Client for the configured backend.
func New(backend, host, apiKey string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendAnthropic:
		return NewAnthropicClient(apiKey), nil
	case BackendOllama, "":
		return NewOllamaClient(host), nil
	default:
		return nil, fmt.Errorf("unknown llm backend: %q", backend)
	}
}

// StripFencing removes a surrounding markdown code fence from model output.
// Models regularly wrap JSON in ```json blocks despite instructions not to.
func StripFencing(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 1 {
		text = lines[1]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
