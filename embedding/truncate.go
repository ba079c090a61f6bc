package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for remote models.
const DefaultEncoding = "cl100k_base"

// Tokenizer splits text into tokens and joins a token prefix back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Bytes treats every UTF-8 byte as a token.
type Bytes struct{}

// Encode implements Tokenizer.
func (Bytes) Encode(text string) []int {
	out := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = int(text[i])
	}
	return out
}

// Decode implements Tokenizer. A rune cut by truncation is dropped.
func (Bytes) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, tok := range tokens {
		b[i] = byte(tok)
	}
	return strings.ToValidUTF8(string(b), "")
}

// Tiktoken adapts a tiktoken BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads encoding, for example "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("embedding: load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Encode implements Tokenizer.
func (t *Tiktoken) Encode(text string) []int { return t.enc.Encode(text, nil, nil) }

// Decode implements Tokenizer.
func (t *Tiktoken) Decode(tokens []int) string { return t.enc.Decode(tokens) }

// Truncating cuts input to at most maxTokens tokens before delegating.
type Truncating struct {
	inner     Embedder
	tokenizer Tokenizer
	maxTokens int
}

// NewTruncating wraps inner. A non-positive maxTokens selects DefaultMaxTokens.
func NewTruncating(inner Embedder, tokenizer Tokenizer, maxTokens int) *Truncating {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Truncating{inner: inner, tokenizer: tokenizer, maxTokens: maxTokens}
}

// Embed implements Embedder.
func (t *Truncating) Embed(ctx context.Context, text string) ([]float32, error) {
	return t.inner.Embed(ctx, t.Truncate(text))
}

// Truncate returns the prefix of text that fits the token bound.
func (t *Truncating) Truncate(text string) string {
	tokens := t.tokenizer.Encode(text)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.tokenizer.Decode(tokens[:t.maxTokens])
}

// Dimension implements Embedder.
func (t *Truncating) Dimension() int { return t.inner.Dimension() }

// Name implements Embedder.
func (t *Truncating) Name() string { return t.inner.Name() }
