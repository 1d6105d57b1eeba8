package store

import (
	"context"
	"errors"

	"github.com/agenthands/concord/internal/core/model"
	"go.uber.org/zap"
)

// Tee writes results to a primary store and, best effort, to archives.
// Reads go to the primary and fall back to the archives on a miss, so a
// result evicted from a cache can still be served.
type Tee struct {
	Primary  ResultStore
	Archives []ResultStore
	Logger   *zap.Logger
}

func NewTee(primary ResultStore, logger *zap.Logger, archives ...ResultStore) *Tee {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tee{Primary: primary, Archives: archives, Logger: logger}
}

func (t *Tee) Save(ctx context.Context, c *model.Comparison) error {
	if err := t.Primary.Save(ctx, c); err != nil {
		return err
	}
	for _, a := range t.Archives {
		if err := a.Save(ctx, c); err != nil {
			t.Logger.Warn("failed to archive comparison", zap.String("id", c.ID), zap.Error(err))
		}
	}
	return nil
}

func (t *Tee) Get(ctx context.Context, id string) (*model.Comparison, error) {
	return t.read(func(s ResultStore) (*model.Comparison, error) { return s.Get(ctx, id) })
}

func (t *Tee) Latest(ctx context.Context) (*model.Comparison, error) {
	return t.read(func(s ResultStore) (*model.Comparison, error) { return s.Latest(ctx) })
}

func (t *Tee) read(fn func(ResultStore) (*model.Comparison, error)) (*model.Comparison, error) {
	c, err := fn(t.Primary)
	if !errors.Is(err, ErrNotFound) {
		return c, err
	}
	for _, a := range t.Archives {
		ac, aerr := fn(a)
		if aerr == nil {
			return ac, nil
		}
		if !errors.Is(aerr, ErrNotFound) {
			t.Logger.Warn("archive read failed", zap.Error(aerr))
		}
	}
	return nil, err
}
