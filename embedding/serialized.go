package embedding

import (
	"context"
	"sync"
)

// Serialized guards a stateful model with its own lock, independent of any
// store lock.
type Serialized struct {
	mu    sync.Mutex
	inner Embedder
}

// NewSerialized wraps inner.
func NewSerialized(inner Embedder) *Serialized {
	return &Serialized{inner: inner}
}

// Embed implements Embedder.
func (s *Serialized) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Embed(ctx, text)
}

// Dimension implements Embedder.
func (s *Serialized) Dimension() int { return s.inner.Dimension() }

// Name implements Embedder.
func (s *Serialized) Name() string { return s.inner.Name() }
