package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/embedstore/embedding"
	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/index/bruteforce"
	"github.com/viant/embedstore/internal/config"
	"github.com/viant/embedstore/vecsync"
	"github.com/viant/embedstore/vector"
)

func newStore(t *testing.T, embedder embedding.Embedder, dim int, opts ...vector.Option) *Store {
	t.Helper()
	records, err := vector.NewSQLiteStore(context.Background(), engine.MemoryDSN, dim, opts...)
	require.NoError(t, err)
	store, err := New("test", embedder, records, bruteforce.New(dim))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSearch_PlaceholderScenario(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, embedding.NewHash(4), 4)

	require.NoError(t, store.AddDocument(ctx, "a", "cat"))
	require.NoError(t, store.AddDocument(ctx, "b", "dog"))
	require.NoError(t, store.AddDocument(ctx, "c", "car"))

	results, err := store.Search(ctx, "feline", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Byte-sum placeholder vectors: dog 0.916153 > car 0.895054 > cat 0.892359.
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "dog", results[0].Text)
	assert.InDelta(t, 0.916153, results[0].Score, 1e-4)
	assert.Equal(t, "c", results[1].ID)
	assert.InDelta(t, 0.895054, results[1].Score, 1e-4)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	all, err := store.Search(ctx, "feline", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[2].ID)
	assert.InDelta(t, 0.892359, all[2].Score, 1e-4)
}

func TestSearch_SQLRankingMatchesScan(t *testing.T) {
	ctx := context.Background()
	texts := map[string]string{"a": "cat", "b": "dog", "c": "car", "d": "feline", "e": "tac"}
	ids := []string{"a", "b", "c", "d", "e"}

	scan := newStore(t, embedding.NewHash(4), 4)
	records, err := vector.NewSQLiteStore(ctx, engine.MemoryDSN, 4)
	require.NoError(t, err)
	sqlRanked, err := New("sql", embedding.NewHash(4), records, bruteforce.New(4), WithSQLRanking())
	require.NoError(t, err)
	defer sqlRanked.Close()

	for _, id := range ids {
		require.NoError(t, scan.AddDocument(ctx, id, texts[id]))
		require.NoError(t, sqlRanked.AddDocument(ctx, id, texts[id]))
	}
	for _, k := range []int{0, 1, 3, 10} {
		want, err := scan.Search(ctx, "feline", k)
		require.NoError(t, err)
		got, err := sqlRanked.Search(ctx, "feline", k)
		require.NoError(t, err)
		require.Len(t, got, len(want), "k=%d", k)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID, "k=%d rank %d", k, i)
			assert.Equal(t, want[i].Text, got[i].Text)
			assert.InDelta(t, want[i].Score, got[i].Score, 1e-12)
		}
	}
}

func TestSearch_ExactMatchScoresOne(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, embedding.NewHash(16), 16)
	require.NoError(t, store.AddDocument(ctx, "q", "quarterly revenue report"))
	require.NoError(t, store.AddDocument(ctx, "r", "weekend hiking trip"))

	results, err := store.Search(ctx, "quarterly revenue report", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "q", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestSearch_NonPositiveKSkipsEmbedding(t *testing.T) {
	var calls atomic.Int32
	e := embedding.NewFunc("counting", 2, func(_ context.Context, _ string) ([]float32, error) {
		calls.Add(1)
		return []float32{1, 0}, nil
	})
	store := newStore(t, e, 2)
	require.NoError(t, store.AddDocument(context.Background(), "a", "x"))

	for _, k := range []int{0, -1} {
		results, err := store.Search(context.Background(), "x", k)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestAddDocument_WrongDimensionRejected(t *testing.T) {
	ctx := context.Background()
	short := embedding.NewFunc("short", 4, func(_ context.Context, _ string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})
	store := newStore(t, short, 4)

	err := store.AddDocument(ctx, "a", "text")
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = store.Search(ctx, "text", 3)
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
}

func TestAddDocument_EmbedderFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	failing := embedding.NewFunc("failing", 2, func(_ context.Context, _ string) ([]float32, error) {
		return nil, boom
	})
	store := newStore(t, failing, 2)
	require.ErrorIs(t, store.AddDocument(context.Background(), "a", "x"), boom)
	_, err := store.Search(context.Background(), "x", 1)
	require.ErrorIs(t, err, boom)
}

func TestNew_DimensionMismatch(t *testing.T) {
	records, err := vector.NewSQLiteStore(context.Background(), engine.MemoryDSN, 4)
	require.NoError(t, err)
	defer records.Close()

	_, err = New("x", embedding.NewHash(8), records, bruteforce.New(4))
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
	_, err = New("x", nil, records, bruteforce.New(4))
	require.Error(t, err)
}

func TestUpsertDeleteClearCompact(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, embedding.NewHash(4), 4)

	require.NoError(t, store.AddDocument(ctx, "a", "first"))
	require.NoError(t, store.AddDocument(ctx, "a", "second"))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", doc.Text)

	require.NoError(t, store.DeleteDocument(ctx, "missing"))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.AddDocument(ctx, "b", "third"))
	require.NoError(t, store.Clear(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	results, err := store.Search(ctx, "first", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.NoError(t, store.Compact(ctx))
}

func TestChanges(t *testing.T) {
	ctx := context.Background()
	logged := newStore(t, embedding.NewHash(4), 4, vector.WithChangeLog(true))
	require.NoError(t, logged.AddDocument(ctx, "a", "x"))
	require.NoError(t, logged.DeleteDocument(ctx, "a"))

	entries, err := logged.Changes(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, vecsync.OpUpsert, entries[0].Op)
	assert.Equal(t, vecsync.OpDelete, entries[1].Op)

	plain := newStore(t, embedding.NewHash(4), 4)
	_, err = plain.Changes(ctx, 0, 10)
	require.ErrorIs(t, err, vector.ErrChangeLogDisabled)
}

func TestOpen_FromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Store.Name = "kb"
	cfg.Store.Dimension = 8
	cfg.Embedding.Dimension = 8

	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.AddDocument(ctx, NewID(), "persisted text"))
	require.NoError(t, store.Close())

	store, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "kb", store.Name())
	assert.Equal(t, 8, store.Dimension())
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "kb.db"))
}

func TestOpen_SQLRanking(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Store.Dimension = 4
	cfg.Store.Ranking = config.RankingSQL
	cfg.Embedding.Dimension = 4

	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NotNil(t, store.nearest)
	require.NoError(t, store.AddDocument(ctx, "b", "dog"))
	require.NoError(t, store.AddDocument(ctx, "c", "car"))

	results, err := store.Search(ctx, "feline", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
