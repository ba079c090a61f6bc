package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/viant/embedstore/embedding"
	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/internal/tracer"
	"github.com/viant/embedstore/vecsync"
	"github.com/viant/embedstore/vector"
)

// ChangeLogger is implemented by record stores that keep a change log.
type ChangeLogger interface {
	Changes(ctx context.Context, afterSeq int64, limit int) ([]vecsync.LogEntry, error)
}

// NearestFinder is implemented by record stores that can rank inside the
// database.
type NearestFinder interface {
	Nearest(ctx context.Context, query []float32, k int) ([]vector.SearchResult, error)
}

// Store is the document store facade. It holds no lock of its own: the
// record store serializes storage access and the embedder guards its model.
type Store struct {
	name     string
	embedder embedding.Embedder
	records  vector.RecordStore
	ranker   index.Ranker
	nearest  NearestFinder
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSQLRanking makes Search rank inside the record store when it
// implements NearestFinder, instead of scanning every record into the ranker.
func WithSQLRanking() Option {
	return func(s *Store) {
		if nf, ok := s.records.(NearestFinder); ok {
			s.nearest = nf
		}
	}
}

// New composes a store. The embedder and record store must agree on the
// vector dimension.
func New(name string, embedder embedding.Embedder, records vector.RecordStore, ranker index.Ranker, opts ...Option) (*Store, error) {
	if embedder == nil || records == nil || ranker == nil {
		return nil, fmt.Errorf("docstore: embedder, records and ranker are required")
	}
	if embedder.Dimension() != records.Dimension() {
		return nil, fmt.Errorf("%w: embedder %s produces %d values, store %q holds %d",
			vector.ErrDimensionMismatch, embedder.Name(), embedder.Dimension(), name, records.Dimension())
	}
	s := &Store{name: name, embedder: embedder, records: records, ranker: ranker, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Dimension returns the vector dimension.
func (s *Store) Dimension() int { return s.records.Dimension() }

// AddDocument embeds text and upserts it under id.
func (s *Store) AddDocument(ctx context.Context, id, text string) (err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.AddDocument")
	span.SetAttributes(tracer.StringAttr("store", s.name), tracer.StringAttr("id", id))
	defer func() { tracer.End(span, err) }()

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	return s.records.Upsert(ctx, vector.Document{ID: id, Text: text, Embedding: vec})
}

// Search embeds query and returns the k most similar documents by
// descending cosine similarity.
func (s *Store) Search(ctx context.Context, query string, k int) (results []vector.SearchResult, err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Search")
	span.SetAttributes(tracer.StringAttr("store", s.name), tracer.IntAttr("k", k))
	defer func() {
		span.SetAttributes(tracer.IntAttr("results", len(results)))
		tracer.End(span, err)
	}()

	if k <= 0 {
		return []vector.SearchResult{}, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.records.Dimension() {
		s.logger.Warn("rejected query with wrong dimension", "store", s.name, "got", len(vec), "want", s.records.Dimension())
		return nil, fmt.Errorf("%w: query has %d values, want %d", vector.ErrDimensionMismatch, len(vec), s.records.Dimension())
	}
	if s.nearest != nil {
		span.SetAttributes(tracer.StringAttr("ranking", "sql"))
		return s.nearest.Nearest(ctx, vec, k)
	}
	docs, err := s.records.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(vec, docs, k)
}

// Get returns the stored document id.
func (s *Store) Get(ctx context.Context, id string) (doc *vector.Document, err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Get")
	span.SetAttributes(tracer.StringAttr("store", s.name), tracer.StringAttr("id", id))
	defer func() { tracer.End(span, err) }()
	return s.records.Get(ctx, id)
}

// DeleteDocument removes id; a missing id is not an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) (err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.DeleteDocument")
	span.SetAttributes(tracer.StringAttr("store", s.name), tracer.StringAttr("id", id))
	defer func() { tracer.End(span, err) }()
	return s.records.Delete(ctx, id)
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Count")
	span.SetAttributes(tracer.StringAttr("store", s.name))
	defer func() { tracer.End(span, err) }()
	return s.records.Count(ctx)
}

// Clear removes every document.
func (s *Store) Clear(ctx context.Context) (err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Clear")
	span.SetAttributes(tracer.StringAttr("store", s.name))
	defer func() { tracer.End(span, err) }()
	return s.records.ClearAll(ctx)
}

// Compact reclaims storage space. It can be slow on large stores.
func (s *Store) Compact(ctx context.Context) (err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Compact")
	span.SetAttributes(tracer.StringAttr("store", s.name))
	defer func() { tracer.End(span, err) }()
	return s.records.Compact(ctx)
}

// Changes reads the change log of the underlying record store.
func (s *Store) Changes(ctx context.Context, afterSeq int64, limit int) (entries []vecsync.LogEntry, err error) {
	ctx, span := tracer.StartSpan(ctx, "docstore.Changes")
	span.SetAttributes(tracer.StringAttr("store", s.name))
	defer func() { tracer.End(span, err) }()

	cl, ok := s.records.(ChangeLogger)
	if !ok {
		return nil, vector.ErrChangeLogDisabled
	}
	return cl.Changes(ctx, afterSeq, limit)
}

// Close releases the record store.
func (s *Store) Close() error {
	return s.records.Close()
}

// NewID returns a new lexically sortable document id.
func NewID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
