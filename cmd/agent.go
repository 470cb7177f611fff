package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/golem/internal/agent"
	"github.com/joescharf/golem/internal/llm"
	"github.com/joescharf/golem/internal/search"
)

// newLLMClient creates the chat backend from config/env.
func newLLMClient() (llm.Client, error) {
	backend := viper.GetString("llm.backend")
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return llm.New(backend, viper.GetString("llm.host"), apiKey)
}

// newEmbedder returns the embedding backend. Embeddings always go through
// Ollama regardless of the chat backend.
func newEmbedder() llm.Embedder {
	client := llm.NewOllamaClient(viper.GetString("llm.host"))
	return llm.NewOllamaEmbedder(client, viper.GetString("embed.model"))
}

// newSearcher returns the web search client; an unset key degrades inside it.
func newSearcher() *search.Client {
	apiKey := viper.GetString("tavily.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	return search.NewClient(apiKey)
}

// buildSession assembles the agent from configuration.
func buildSession() (*agent.Session, error) {
	client, err := newLLMClient()
	if err != nil {
		return nil, fmt.Errorf("configure llm backend: %w", err)
	}

	cfg := agent.Config{
		DefaultModel:        viper.GetString("llm.model"),
		DefaultPlannerModel: viper.GetString("llm.planner_model"),
		AvailableModels:     viper.GetStringSlice("llm.models"),
		AllowedPrefixes:     viper.GetStringSlice("safety.allowed_prefixes"),
		MaxHistory:          viper.GetInt("history.max"),
		ContextWindow:       viper.GetInt("history.context_window"),
		RetrievalK:          viper.GetInt("rag.retrieval_k"),
		MemoriesK:           viper.GetInt("rag.memories_k"),
		Temperature:         viper.GetFloat64("llm.temperature"),
		PlannerTemperature:  viper.GetFloat64("llm.planner_temperature"),
		RagEnabled:          viper.GetBool("rag.enabled"),
		DefaultServeFolder:  viper.GetString("serve.folder"),
		DefaultServePort:    viper.GetInt("serve.port"),
		WorkDir:             viper.GetString("workdir"),
	}

	return agent.NewSession(cfg, getStore(), client, newEmbedder(), newSearcher(), logger), nil
}
