package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient invokes models through a local (or remote) Ollama server.
type OllamaClient struct {
	baseURL string
	http    *http.Client
}

// NewOllamaClient creates a client for the given host. An empty host uses
// the default local Ollama address.
func NewOllamaClient(host string) *OllamaClient {
	if host == "" {
		host = defaultOllamaHost
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(host, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]float64  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

type ollamaEmbeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Invoke sends a chat request and returns the assistant message content.
func (c *OllamaClient) Invoke(ctx context.Context, req InvokeRequest) (string, error) {
	msgs := make([]ollamaChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = ollamaChatMessage{Role: m.Role, Content: m.Content}
	}

	payload := ollamaChatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   false,
		Options:  map[string]float64{"temperature": req.Temperature},
	}

	var out ollamaChatResponse
	if err := c.post(ctx, "/api/chat", payload, &out); err != nil {
		return "", err
	}
	return out.Message.Content, nil
}

// Embed returns the embedding vector for text using the given model.
func (c *OllamaClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	var out ollamaEmbeddingsResponse
	if err := c.post(ctx, "/api/embeddings", ollamaEmbeddingsRequest{Model: model, Prompt: text}, &out); err != nil {
		return nil, err
	}
	return out.Embedding, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			return fmt.Errorf("ollama %s failed (status=%d)", path, resp.StatusCode)
		}
		return fmt.Errorf("ollama %s failed (status=%d): %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OllamaEmbedder adapts an OllamaClient to the Embedder interface with a
// fixed embedding model.
type OllamaEmbedder struct {
	client *OllamaClient
	model  string
}

// NewOllamaEmbedder wraps client with the given embedding model.
func NewOllamaEmbedder(client *OllamaClient, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.client.Embed(ctx, e.model, text)
}
