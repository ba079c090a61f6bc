package vector

import (
	"context"
)

// Document is a single stored record. Embedding length always equals the
// dimension of the store holding it.
type Document struct {
	// ID is the logical identifier of the document, unique within a store.
	ID string

	// Text holds the UTF-8 content that was embedded.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// SearchResult is a ranked match. Score is a cosine similarity in [-1, 1].
type SearchResult struct {
	ID    string
	Text  string
	Score float64
}

// RecordStore is durable CRUD over documents of a fixed embedding dimension.
// Implementations serialize every call on a single exclusive lock.
type RecordStore interface {
	// Dimension returns the embedding length accepted by the store.
	Dimension() int

	// Upsert writes doc, replacing any record with the same ID. A document
	// whose embedding length differs from Dimension is rejected unwritten.
	Upsert(ctx context.Context, doc Document) error

	// Get returns the document stored under id or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// ScanAll returns every record whose stored embedding decodes to exactly
	// Dimension values. Malformed rows are skipped.
	ScanAll(ctx context.Context) ([]Document, error)

	// Delete removes id. Deleting a missing id succeeds.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)

	// ClearAll removes every row and keeps the schema.
	ClearAll(ctx context.Context) error

	// Compact reclaims space in the backing database.
	Compact(ctx context.Context) error

	// Close releases the storage handle. Later calls fail with ErrNotInitialized.
	Close() error
}
