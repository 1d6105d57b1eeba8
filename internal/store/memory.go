package store

import (
	"context"
	"sync"

	"github.com/agenthands/concord/internal/core/model"
)

// Memory keeps everything in process. It is the default backend.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	results map[string]*model.Comparison
	latest  string
}

func NewMemory() *Memory {
	return &Memory{
		docs:    make(map[string][]byte),
		results: make(map[string]*model.Comparison),
	}
}

func (m *Memory) PutDocument(ctx context.Context, slot string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[slot] = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) GetDocument(ctx context.Context, slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (m *Memory) Save(ctx context.Context, c *model.Comparison) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[c.ID] = c
	m.latest = c.ID
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*model.Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *Memory) Latest(ctx context.Context) (*model.Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == "" {
		return nil, ErrNotFound
	}
	return m.results[m.latest], nil
}
