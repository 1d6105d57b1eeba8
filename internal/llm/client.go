package llm

import (
	"context"
)

// GenerateOptions tunes a single completion call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
}

// LLMClient is the generative completion capability. An empty completion is
// returned as "" with a nil error; transport and auth failures are returned
// as *UpstreamError.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// EmbedderClient embeds a batch of texts, returning one vector per input in
// input order.
type EmbedderClient interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
