package core

import (
	"context"
	"fmt"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core/extraction"
	"github.com/agenthands/concord/internal/core/similarity"
	"github.com/agenthands/concord/internal/llm"
	"github.com/agenthands/concord/internal/metrics"
	"go.uber.org/zap"
)

// NewFromConfig wires a Comparator to the configured model providers. The
// embedder is created on first use and shared afterwards.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Comparator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	embedCfg := cfg.Embedding
	embedder := llm.NewLazyEmbedder(func(ctx context.Context) (llm.EmbedderClient, error) {
		return llm.NewEmbedder(ctx, embedCfg)
	})

	scorer := similarity.NewScorer(embedder, cfg.Pipeline.BatchSize, cfg.Embedding.PassagePrefix, cfg.Embedding.ParallelBatches)
	extractor := extraction.NewExtractor(llmClient, cfg.Prompts, llm.GenerateOptions{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	logger.Info("pipeline configured",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Float64("threshold", cfg.Pipeline.SimilarityThreshold),
	)
	return NewComparator(cfg.Pipeline, scorer, extractor, logger, m), nil
}
