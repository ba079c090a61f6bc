package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/embedstore/embedding"
	"github.com/viant/embedstore/index/bruteforce"
	"github.com/viant/embedstore/internal/config"
	"github.com/viant/embedstore/vector"
)

// Open builds the store described by cfg: the configured embedding
// provider, a SQLite or Postgres record store and the brute-force ranker,
// or in-database ranking when the store is configured for it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	opts := []vector.Option{vector.WithLogger(logger), vector.WithChangeLog(cfg.Store.ChangeLog)}
	var records *vector.SQLStore
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		records, err = vector.NewPostgresStore(ctx, cfg.Store.DSN, cfg.Store.Dimension, opts...)
	case config.DriverSQLite, "":
		records, err = vector.NewSQLiteStore(ctx, cfg.StorePath(), cfg.Store.Dimension, opts...)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	storeOpts := []Option{WithLogger(logger)}
	if cfg.Store.Ranking == config.RankingSQL {
		storeOpts = append(storeOpts, WithSQLRanking())
	}
	store, err := New(cfg.Store.Name, embedder, records, bruteforce.New(cfg.Store.Dimension), storeOpts...)
	if err != nil {
		_ = records.Close()
		return nil, err
	}
	return store, nil
}
