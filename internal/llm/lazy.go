package llm

import (
	"context"
	"sync"
)

// LazyEmbedder defers construction of an embedder until the first batch and
// then shares that single instance with every caller. A failed construction
// is not cached; the next batch tries again.
type LazyEmbedder struct {
	init func(ctx context.Context) (EmbedderClient, error)

	mu       sync.Mutex
	embedder EmbedderClient
}

func NewLazyEmbedder(init func(ctx context.Context) (EmbedderClient, error)) *LazyEmbedder {
	return &LazyEmbedder{init: init}
}

func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.get()
	if err != nil {
		return nil, err
	}
	return e.EmbedBatch(ctx, texts)
}

// get builds the client outside any request context so a cancelled first
// request cannot leave the shared client bound to a dead context.
func (l *LazyEmbedder) get() (EmbedderClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.embedder != nil {
		return l.embedder, nil
	}
	e, err := l.init(context.Background())
	if err != nil {
		return nil, err
	}
	l.embedder = e
	return e, nil
}
