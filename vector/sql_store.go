package vector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx database/sql driver

	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/vecsync"
)

// DatabaseExt is the file extension of per-store SQLite databases.
const DatabaseExt = ".db"

// DatabasePath returns the database file of the store called name in dir.
func DatabasePath(dir, name string) string {
	return filepath.Join(dir, name+DatabaseExt)
}

// SQLStore is a RecordStore over database/sql. A single mutex guards the
// handle for the full duration of every operation, so reads and writes on
// one store are totally ordered.
//
// A store whose construction failed is still returned to the caller, in the
// not-initialized state: every operation then fails with ErrNotInitialized
// without touching the database.
type SQLStore struct {
	mu          sync.Mutex
	db          *sql.DB
	dialect     Dialect
	dim         int
	location    string
	changeLog   bool
	initialized bool
	logger      *slog.Logger
}

// NewSQLiteStore opens or creates the SQLite database at path, creating its
// parent directory when needed. Pass engine.MemoryDSN for a private
// in-memory store.
func NewSQLiteStore(ctx context.Context, path string, dim int, opts ...Option) (*SQLStore, error) {
	o := newOptions(opts)
	s := &SQLStore{dialect: SQLite, dim: dim, location: path, logger: o.logger}
	if err := validateDimension(dim); err != nil {
		return s, s.initFailure(err)
	}
	if path != engine.MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return s, s.initFailure(fmt.Errorf("create directory: %v", err))
		}
	}
	if err := RegisterSQLFunctions(); err != nil {
		return s, s.initFailure(fmt.Errorf("register vector functions: %v", err))
	}
	db, err := engine.OpenFile(path)
	if err != nil {
		return s, s.initFailure(fmt.Errorf("open %s: %v", path, err))
	}
	return s, s.init(ctx, db, o)
}

// NewPostgresStore connects to dsn through pgx and ensures the documents
// schema. The change log is not available on Postgres.
func NewPostgresStore(ctx context.Context, dsn string, dim int, opts ...Option) (*SQLStore, error) {
	o := newOptions(opts)
	s := &SQLStore{dialect: Postgres, dim: dim, location: "postgres", logger: o.logger}
	if err := validateDimension(dim); err != nil {
		return s, s.initFailure(err)
	}
	db, err := sql.Open(Postgres.Driver, dsn)
	if err != nil {
		return s, s.initFailure(fmt.Errorf("open postgres: %v", err))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return s, s.initFailure(fmt.Errorf("ping postgres: %v", err))
	}
	return s, s.init(ctx, db, o)
}

// NewSQLStore builds a store over an already opened handle. The store takes
// ownership of db and closes it on failure or Close.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, dim int, opts ...Option) (*SQLStore, error) {
	o := newOptions(opts)
	s := &SQLStore{dialect: dialect, dim: dim, location: dialect.Name, logger: o.logger}
	if db == nil {
		return s, s.initFailure(errors.New("db is nil"))
	}
	if err := validateDimension(dim); err != nil {
		_ = db.Close()
		return s, s.initFailure(err)
	}
	return s, s.init(ctx, db, o)
}

func validateDimension(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dim)
	}
	return nil
}

func (s *SQLStore) init(ctx context.Context, db *sql.DB, o *options) error {
	if err := EnsureSchema(ctx, db, s.dialect); err != nil {
		_ = db.Close()
		return s.initFailure(err)
	}
	if o.changeLog {
		if !s.dialect.ChangeLog {
			_ = db.Close()
			return s.initFailure(fmt.Errorf("change log is not supported by %s", s.dialect.Name))
		}
		if err := vecsync.Install(ctx, db, TableName, vecsync.DefaultLogTable); err != nil {
			_ = db.Close()
			return s.initFailure(err)
		}
	}
	s.db = db
	s.changeLog = o.changeLog
	s.initialized = true
	s.logger.Debug("vector store initialized", "location", s.location, "dialect", s.dialect.Name, "dimension", s.dim)
	return nil
}

func (s *SQLStore) initFailure(cause error) error {
	s.logger.Error("vector store initialization failed", "location", s.location, "error", cause)
	return fmt.Errorf("%w: %v", ErrNotInitialized, cause)
}

// Dimension implements RecordStore.
func (s *SQLStore) Dimension() int { return s.dim }

// Location returns the database path, or the dialect name for servers.
func (s *SQLStore) Location() string { return s.location }

// Initialized reports whether the store is usable.
func (s *SQLStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Upsert implements RecordStore.
func (s *SQLStore) Upsert(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if doc.ID == "" || doc.Text == "" {
		return fmt.Errorf("%w: id and text are required", ErrInvalidDocument)
	}
	if len(doc.Embedding) != s.dim {
		s.logger.Warn("rejected document with wrong dimension", "id", doc.ID, "got", len(doc.Embedding), "want", s.dim)
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(doc.Embedding), s.dim)
	}
	for i, v := range doc.Embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: embedding value %d is not finite", ErrInvalidDocument, i)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, doc.ID, doc.Text, EncodeEmbedding(doc.Embedding)); err != nil {
		return fmt.Errorf("%w: upsert %q: %v", ErrStorage, doc.ID, err)
	}
	s.logger.Debug("document stored", "id", doc.ID)
	return nil
}

// Get implements RecordStore.
func (s *SQLStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	var doc Document
	var encoded string
	err := s.db.QueryRowContext(ctx, s.dialect.Get, id).Scan(&doc.ID, &doc.Text, &encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %q: %v", ErrStorage, id, err)
	}
	if doc.Embedding, err = s.decode(encoded); err != nil {
		return nil, fmt.Errorf("document %q: %w", id, err)
	}
	return &doc, nil
}

// ScanAll implements RecordStore.
func (s *SQLStore) ScanAll(ctx context.Context) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.Scan)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var encoded string
		if err := rows.Scan(&doc.ID, &doc.Text, &encoded); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrStorage, err)
		}
		if doc.Embedding, err = s.decode(encoded); err != nil {
			s.logger.Warn("skipping unreadable document", "id", doc.ID, "error", err)
			continue
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
	}
	return out, nil
}

// Nearest ranks the stored documents against query inside the database and
// returns the k best by descending cosine similarity, ties in insertion
// order. Unreadable rows and rows of the wrong length are left out. Only
// dialects with vector functions support it.
func (s *SQLStore) Nearest(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if s.dialect.Nearest == "" {
		return nil, fmt.Errorf("%w: %s", ErrNearestUnsupported, s.dialect.Name)
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d values, want %d", ErrDimensionMismatch, len(query), s.dim)
	}
	if k <= 0 {
		return []SearchResult{}, nil
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.Nearest, encodeQuery(query), s.dim, k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest: %v", ErrStorage, err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Text, &r.Score); err != nil {
			return nil, fmt.Errorf("%w: nearest row: %v", ErrStorage, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: nearest: %v", ErrStorage, err)
	}
	return out, nil
}

func (s *SQLStore) decode(encoded string) ([]float32, error) {
	vec, err := DecodeEmbedding(encoded)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("%w: stored length %d, want %d", ErrSerialization, len(vec), s.dim)
	}
	return vec, nil
}

// Delete implements RecordStore.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Delete, id); err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrStorage, id, err)
	}
	return nil
}

// Count implements RecordStore.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.dialect.Count).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStorage, err)
	}
	return n, nil
}

// ClearAll implements RecordStore.
func (s *SQLStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Clear); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStorage, err)
	}
	return nil
}

// Compact implements RecordStore.
func (s *SQLStore) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Compact); err != nil {
		return fmt.Errorf("%w: compact: %v", ErrStorage, err)
	}
	s.logger.Info("vector store compacted", "location", s.location)
	return nil
}

// Changes returns change log entries after seq, at most limit of them.
func (s *SQLStore) Changes(ctx context.Context, afterSeq int64, limit int) ([]vecsync.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if !s.changeLog {
		return nil, ErrChangeLogDisabled
	}
	entries, err := vecsync.ReadLog(ctx, s.db, vecsync.DefaultLogTable, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return entries, nil
}

// Close implements RecordStore.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	s.initialized = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStorage, err)
	}
	return nil
}

// Ensure SQLStore satisfies the RecordStore interface.
var _ RecordStore = (*SQLStore)(nil)
