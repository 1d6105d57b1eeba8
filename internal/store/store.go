// Package store stages uploaded documents and keeps comparison results.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/concord/internal/core/model"
)

var ErrNotFound = errors.New("not found")

// Document slots used by the upload-then-compare flow.
const (
	SlotLeft  = "doc1"
	SlotRight = "doc2"
)

// SlotName maps the numeric slot of the upload route ("1" or "2") to a
// document slot.
func SlotName(n string) (string, error) {
	switch n {
	case "1", SlotLeft:
		return SlotLeft, nil
	case "2", SlotRight:
		return SlotRight, nil
	default:
		return "", fmt.Errorf("invalid document slot %q", n)
	}
}

type DocumentStore interface {
	PutDocument(ctx context.Context, slot string, doc []byte) error
	GetDocument(ctx context.Context, slot string) ([]byte, error)
}

type ResultStore interface {
	Save(ctx context.Context, c *model.Comparison) error
	Get(ctx context.Context, id string) (*model.Comparison, error)
	Latest(ctx context.Context) (*model.Comparison, error)
}

// Store is a backend holding both documents and results.
type Store interface {
	DocumentStore
	ResultStore
}
