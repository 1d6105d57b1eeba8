package core

import (
	"context"
	"sync"

	"github.com/agenthands/concord/internal/core/model"
)

type MockScorer struct {
	Scores []float64
	Err    error
}

func (m *MockScorer) Score(ctx context.Context, pairs []model.AlignedPair) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Scores, nil
}

type MockExtractor struct {
	// Fn answers a call; when nil the extractor returns an empty extraction.
	Fn func(ctx context.Context, a, b string) (model.Extraction, error)

	mu    sync.Mutex
	Calls []string
}

func (m *MockExtractor) Extract(ctx context.Context, a, b string) (model.Extraction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, a)
	m.mu.Unlock()

	if m.Fn == nil {
		return model.Extraction{Records: []model.DifferenceRecord{}}, nil
	}
	return m.Fn(ctx, a, b)
}

func (m *MockExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
