// Package similarity scores aligned paragraph pairs by the cosine of their
// embeddings.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/llm"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 16

type Scorer struct {
	Embedder llm.EmbedderClient

	batchSize int
	prefix    string
	parallel  int
}

// NewScorer builds a Scorer. prefix is prepended to every text before
// embedding ("passage: " for E5 models). parallel bounds how many batches
// are in flight at once.
func NewScorer(embedder llm.EmbedderClient, batchSize int, prefix string, parallel int) *Scorer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if parallel <= 0 {
		parallel = 1
	}
	return &Scorer{
		Embedder:  embedder,
		batchSize: batchSize,
		prefix:    prefix,
		parallel:  parallel,
	}
}

// Score returns one similarity per pair, in pair order.
func (s *Scorer) Score(ctx context.Context, pairs []model.AlignedPair) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}

	// Left texts occupy [0, n), right texts [n, 2n).
	n := len(pairs)
	texts := make([]string, 2*n)
	for i, p := range pairs {
		texts[i] = s.prefix + p.Left.Text
		texts[n+i] = s.prefix + p.Right.Text
	}

	vecs, err := s.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	for i := range pairs {
		scores[i] = Cosine(vecs[i], vecs[n+i])
	}
	return scores, nil
}

func (s *Scorer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for start := 0; start < len(texts); start += s.batchSize {
		start := start
		end := min(start+s.batchSize, len(texts))
		g.Go(func() error {
			batch, err := s.Embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("failed to embed batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
			}
			copy(out[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1, 1]. Both
// vectors are L2-normalised first, so the result is their dot product. A zero
// vector, or one holding NaN or Inf, has similarity 0 with everything so the
// pair is escalated.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := normalize(a), normalize(b)
	if na == nil || nb == nil {
		return 0
	}
	var dot float64
	for i := range na {
		dot += na[i] * nb[i]
	}
	if math.IsNaN(dot) || math.IsInf(dot, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, dot))
}

func normalize(v []float32) []float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}
