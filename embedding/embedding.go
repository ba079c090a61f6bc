package embedding

import (
	"context"
	"errors"

	"github.com/viant/vec/search"
)

// DefaultMaxTokens bounds the input of an embedder; longer input is
// truncated, never rejected.
const DefaultMaxTokens = 512

// DefaultDimension is the output length of the placeholder model.
const DefaultDimension = 384

var (
	// ErrEmbeddingFailed reports a provider call that produced no usable vector.
	ErrEmbeddingFailed = errors.New("embedding: embed failed")

	// ErrCircuitOpen reports a call rejected while the provider breaker is open.
	ErrCircuitOpen = errors.New("embedding: circuit open")
)

// Embedder maps text to a vector of Dimension values. Output is unit length
// unless its norm is zero, in which case the zero vector is returned.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}
	m := search.Float32s(v).Magnitude()
	if m == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] / m
	}
	return out
}

// Func adapts a plain function to Embedder.
type Func func(ctx context.Context, text string) ([]float32, error)

type funcEmbedder struct {
	name string
	dim  int
	fn   Func
}

// NewFunc wraps fn as an Embedder reporting the given name and dimension.
func NewFunc(name string, dim int, fn Func) Embedder {
	return &funcEmbedder{name: name, dim: dim, fn: fn}
}

func (f *funcEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.fn(ctx, text)
}

func (f *funcEmbedder) Dimension() int { return f.dim }
func (f *funcEmbedder) Name() string   { return f.name }
