package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/concord/internal/config"
)

// NewClient builds the completion client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, "", cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, "")

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		return newOllamaClient(cfg.APIKey, cfg.Model, "", cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// NewEmbedder builds the embedding client for the configured provider.
// Claude has no embedding endpoint and is rejected here.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, "", cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, "", cfg.Model)

	case "ollama":
		return newOllamaClient(cfg.APIKey, "", cfg.Model, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// Ollama is reached through its OpenAI-compatible API. The key is ignored by
// Ollama but the client requires one.
func newOllamaClient(apiKey, model, embeddingModel, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}
	if apiKey == "" {
		apiKey = "ollama"
	}

	c := NewOpenAIClient(apiKey, model, embeddingModel, baseURL)
	c.provider = "ollama"
	return c
}
