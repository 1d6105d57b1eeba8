// Package core runs the paragraph comparison pipeline: align, score, gate and
// extract, joined back in pair order.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core/align"
	"github.com/agenthands/concord/internal/core/gate"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scorer returns one similarity per aligned pair, in order.
type Scorer interface {
	Score(ctx context.Context, pairs []model.AlignedPair) ([]float64, error)
}

// DifferenceExtractor reports the factual differences of one paragraph pair.
type DifferenceExtractor interface {
	Extract(ctx context.Context, paragraphA, paragraphB string) (model.Extraction, error)
}

type Comparator struct {
	Scorer    Scorer
	Extractor DifferenceExtractor
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	Threshold      float64
	Align          align.Options
	MaxConcurrency int
	PairTimeout    time.Duration
	RequestTimeout time.Duration
}

func NewComparator(cfg config.PipelineConfig, scorer Scorer, extractor DifferenceExtractor, logger *zap.Logger, m *metrics.Metrics) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{
		Scorer:    scorer,
		Extractor: extractor,
		Logger:    logger,
		Metrics:   m,

		Threshold:      cfg.SimilarityThreshold,
		Align:          align.Options{TextField: cfg.TextField, PositionField: cfg.PositionField},
		MaxConcurrency: cfg.MaxConcurrency,
		PairTimeout:    cfg.PairTimeout.Duration,
		RequestTimeout: cfg.RequestTimeout.Duration,
	}
}

// Compare aligns docA and docB and reports the differences of every kept
// pair. Alignment and scoring failures abort the comparison; extractor
// failures are recorded on the affected result only. The returned results
// always have one entry per aligned pair, in pair order.
func (c *Comparator) Compare(ctx context.Context, docA, docB []byte) (*model.Comparison, error) {
	start := time.Now()
	if c.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
	}

	pairs, err := align.Pairs(docA, docB, c.Align)
	if err != nil {
		c.Metrics.ObserveComparison("shape_error")
		return nil, err
	}

	scores, err := c.Scorer.Score(ctx, pairs)
	if err != nil {
		c.Metrics.ObserveComparison("score_error")
		return nil, fmt.Errorf("failed to score pairs: %w", err)
	}
	if len(scores) != len(pairs) {
		c.Metrics.ObserveComparison("score_error")
		return nil, fmt.Errorf("scorer returned %d scores for %d pairs", len(scores), len(pairs))
	}

	results := make([]model.ComparisonResult, len(pairs))
	escalated := 0

	g := new(errgroup.Group)
	if c.MaxConcurrency > 0 {
		g.SetLimit(c.MaxConcurrency)
	}
	for i, p := range pairs {
		results[i] = model.ComparisonResult{
			Index:      p.Index,
			Para1:      p.Left.Text,
			Para2:      p.Right.Text,
			Similarity: scores[i],
		}

		decision := gate.Decide(scores[i], c.Threshold)
		c.Metrics.ObservePair(decision.String(), scores[i])
		if decision == gate.Skip {
			continue
		}

		escalated++
		i := i
		g.Go(func() error {
			c.extractPair(ctx, &results[i])
			return nil
		})
	}
	// Pair failures are recorded on the results, so Wait never fails.
	_ = g.Wait()

	comparison := &model.Comparison{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Threshold: c.Threshold,
		Results:   results,
		Summary:   Summarize(results),
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	c.Metrics.ObserveComparison("ok")
	c.Logger.Info("comparison complete",
		zap.String("id", comparison.ID),
		zap.Int("pairs", len(results)),
		zap.Int("escalated", escalated),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)),
	)

	return comparison, nil
}

type extractOutcome struct {
	extraction model.Extraction
	err        error
}

// extractPair fills r from one extractor call. A call that outlives its
// deadline is abandoned; its goroutine finishes into a buffered channel.
func (c *Comparator) extractPair(ctx context.Context, r *model.ComparisonResult) {
	if c.PairTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PairTimeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan extractOutcome, 1)
	go func() {
		ext, err := c.Extractor.Extract(ctx, r.Para1, r.Para2)
		done <- extractOutcome{extraction: ext, err: err}
	}()

	var out extractOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	took := time.Since(start)

	if out.err != nil {
		kind := model.ErrorKindUpstream
		if ctx.Err() != nil || errors.Is(out.err, context.DeadlineExceeded) {
			kind = model.ErrorKindTimeout
		}
		r.DetailedDifferences = []model.DifferenceRecord{}
		r.Error = &model.PairError{Kind: kind, Message: out.err.Error()}
		c.Metrics.ObserveExtractor(kind, took, false)
		c.Logger.Warn("extractor failed",
			zap.Int("index", r.Index),
			zap.String("kind", kind),
			zap.Error(out.err),
		)
		return
	}

	records := out.extraction.Records
	if records == nil {
		records = []model.DifferenceRecord{}
	}
	r.DetailedDifferences = records
	r.ParseFallback = out.extraction.Fallback
	c.Metrics.ObserveExtractor("ok", took, out.extraction.Fallback)
}

// Summarize aggregates the difference records of all results.
func Summarize(results []model.ComparisonResult) model.Summary {
	var (
		s     model.Summary
		total float64
	)
	for _, r := range results {
		for _, d := range r.DetailedDifferences {
			s.TotalSegments++
			if d.MismatchType != model.MismatchMatch {
				s.TotalMismatches++
			}
			total += d.Confidence
		}
	}
	s.AverageConfidence = total / float64(max(1, s.TotalSegments))
	return s
}
