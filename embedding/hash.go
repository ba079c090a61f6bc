package embedding

import (
	"context"
	"fmt"
)

// Hash is a deterministic placeholder model. Every UTF-8 byte of the input
// is a token; token i adds byte/256 to component i mod Dimension, and the
// result is normalized. Input beyond MaxTokens is ignored.
type Hash struct {
	dim       int
	maxTokens int
	tokenizer Bytes
}

// NewHash returns a placeholder embedder producing dim values.
func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Hash{dim: dim, maxTokens: DefaultMaxTokens}
}

// Embed implements Embedder.
func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := h.tokenizer.Encode(text)
	if len(tokens) > h.maxTokens {
		tokens = tokens[:h.maxTokens]
	}
	vec := make([]float32, h.dim)
	for i, tok := range tokens {
		vec[i%h.dim] += float32(tok) / 256
	}
	return Normalize(vec), nil
}

// Dimension implements Embedder.
func (h *Hash) Dimension() int { return h.dim }

// Name implements Embedder.
func (h *Hash) Name() string { return fmt.Sprintf("hash-%d", h.dim) }

var _ Embedder = (*Hash)(nil)
