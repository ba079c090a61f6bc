package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/viant/embedstore/docstore"
	"github.com/viant/embedstore/embedding"
	"github.com/viant/embedstore/index/bruteforce"
	"github.com/viant/embedstore/vector"
)

// Handle identifies a registered store or embedder. Zero is never issued.
type Handle int64

// Match is a search hit returned to the host.
type Match struct {
	ID    string
	Text  string
	Score float64
}

type storeEntry struct {
	name    string
	records *vector.SQLStore
}

// Registry owns every store and embedder created through the bridge.
type Registry struct {
	mu        sync.Mutex
	dataDir   string
	next      Handle
	stores    map[Handle]*storeEntry
	embedders map[Handle]embedding.Embedder
	logger    *slog.Logger
}

// NewRegistry creates a registry placing store files under dataDir.
func NewRegistry(dataDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dataDir:   dataDir,
		stores:    map[Handle]*storeEntry{},
		embedders: map[Handle]embedding.Embedder{},
		logger:    logger,
	}
}

func (r *Registry) issue() Handle {
	r.next++
	return r.next
}

// CreateStore opens or creates the store name with dimension dim. A handle
// is returned even when initialization fails; IsInitialized reports it.
func (r *Registry) CreateStore(name string, dim int) Handle {
	records, err := r.openStore(name, dim)
	if err != nil {
		r.logger.Error("create store failed", "name", name, "dimension", dim, "error", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.issue()
	r.stores[h] = &storeEntry{name: name, records: records}
	return h
}

func (r *Registry) openStore(name string, dim int) (*vector.SQLStore, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: invalid store name %q", vector.ErrNotInitialized, name)
	}
	return vector.NewSQLiteStore(context.Background(), vector.DatabasePath(r.dataDir, name), dim, vector.WithLogger(r.logger))
}

// IsInitialized reports whether the store behind h is usable.
func (r *Registry) IsInitialized(h Handle) bool {
	entry := r.store(h)
	return entry != nil && entry.records != nil && entry.records.Initialized()
}

// LoadEmbedder builds an embedder from cfg and returns its handle, or 0.
func (r *Registry) LoadEmbedder(cfg embedding.Config) Handle {
	e, err := embedding.New(cfg, r.logger)
	if err != nil {
		r.logger.Error("load embedder failed", "provider", cfg.Provider, "error", err)
		return 0
	}
	return r.RegisterEmbedder(e)
}

// RegisterEmbedder adds an existing embedder and returns its handle.
func (r *Registry) RegisterEmbedder(e embedding.Embedder) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.issue()
	r.embedders[h] = e
	return h
}

// EmbedderDimension returns the output length of the embedder, or 0.
func (r *Registry) EmbedderDimension(h Handle) int {
	e := r.embedder(h)
	if e == nil {
		return 0
	}
	return e.Dimension()
}

// AddToKnowledgeBase embeds text with emb and stores it under id in store.
func (r *Registry) AddToKnowledgeBase(emb, store Handle, id, text string) bool {
	s, err := r.facade(emb, store)
	if err == nil {
		err = s.AddDocument(context.Background(), id, text)
	}
	return r.report("add document", store, err)
}

// SearchSimilarDocuments returns up to k matches for query, best first.
func (r *Registry) SearchSimilarDocuments(emb, store Handle, query string, k int) []Match {
	s, err := r.facade(emb, store)
	var results []vector.SearchResult
	if err == nil {
		results, err = s.Search(context.Background(), query, k)
	}
	if !r.report("search", store, err) {
		return []Match{}
	}
	out := make([]Match, len(results))
	for i, res := range results {
		out[i] = Match{ID: res.ID, Text: res.Text, Score: res.Score}
	}
	return out
}

// DeleteDocument removes id from store.
func (r *Registry) DeleteDocument(store Handle, id string) bool {
	records, err := r.records(store)
	if err == nil {
		err = records.Delete(context.Background(), id)
	}
	return r.report("delete document", store, err)
}

// Count returns the number of documents in store, 0 on failure.
func (r *Registry) Count(store Handle) int {
	records, err := r.records(store)
	n := 0
	if err == nil {
		n, err = records.Count(context.Background())
	}
	if !r.report("count", store, err) {
		return 0
	}
	return n
}

// Clear removes every document from store.
func (r *Registry) Clear(store Handle) bool {
	records, err := r.records(store)
	if err == nil {
		err = records.ClearAll(context.Background())
	}
	return r.report("clear", store, err)
}

// Compact reclaims space in store.
func (r *Registry) Compact(store Handle) bool {
	records, err := r.records(store)
	if err == nil {
		err = records.Compact(context.Background())
	}
	return r.report("compact", store, err)
}

// CloseStore releases store and forgets its handle.
func (r *Registry) CloseStore(store Handle) bool {
	r.mu.Lock()
	entry, ok := r.stores[store]
	delete(r.stores, store)
	r.mu.Unlock()
	if !ok {
		return false
	}
	var err error
	if entry.records != nil {
		err = entry.records.Close()
	}
	return r.report("close store", store, err)
}

// UnloadEmbedder forgets the embedder behind h.
func (r *Registry) UnloadEmbedder(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.embedders[h]; !ok {
		return false
	}
	delete(r.embedders, h)
	return true
}

// Dispose closes every store and drops every embedder.
func (r *Registry) Dispose() {
	r.mu.Lock()
	stores := r.stores
	r.stores = map[Handle]*storeEntry{}
	r.embedders = map[Handle]embedding.Embedder{}
	r.mu.Unlock()

	for h, entry := range stores {
		if entry.records == nil {
			continue
		}
		if err := entry.records.Close(); err != nil {
			r.logger.Warn("close store failed", "handle", int64(h), "name", entry.name, "error", err)
		}
	}
}

var errUnknownHandle = errors.New("bridge: unknown handle")

func (r *Registry) store(h Handle) *storeEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores[h]
}

func (r *Registry) embedder(h Handle) embedding.Embedder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.embedders[h]
}

func (r *Registry) records(h Handle) (*vector.SQLStore, error) {
	entry, err := r.usable(h)
	if err != nil {
		return nil, err
	}
	return entry.records, nil
}

func (r *Registry) usable(h Handle) (*storeEntry, error) {
	entry := r.store(h)
	if entry == nil {
		return nil, fmt.Errorf("%w: store %d", errUnknownHandle, h)
	}
	if entry.records == nil {
		return nil, vector.ErrNotInitialized
	}
	return entry, nil
}

func (r *Registry) facade(emb, store Handle) (*docstore.Store, error) {
	entry, err := r.usable(store)
	if err != nil {
		return nil, err
	}
	e := r.embedder(emb)
	if e == nil {
		return nil, fmt.Errorf("%w: embedder %d", errUnknownHandle, emb)
	}
	dim := entry.records.Dimension()
	return docstore.New(entry.name, e, entry.records, bruteforce.New(dim), docstore.WithLogger(r.logger))
}

func (r *Registry) report(op string, store Handle, err error) bool {
	if err != nil {
		r.logger.Warn("bridge call failed", "op", op, "store", int64(store), "error", err)
		return false
	}
	return true
}
