package similarity

import (
	"context"
	"sync"
)

// MockEmbedderClient maps texts to fixed vectors and records every batch it
// was asked to embed.
type MockEmbedderClient struct {
	Vectors map[string][]float32
	Default []float32
	Err     error

	mu      sync.Mutex
	Batches [][]string
}

func (m *MockEmbedderClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Batches = append(m.Batches, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.Vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = m.Default
		}
	}
	return out, nil
}

func (m *MockEmbedderClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Batches)
}
