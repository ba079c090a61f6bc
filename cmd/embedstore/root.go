package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/viant/embedstore/docstore"
	"github.com/viant/embedstore/internal/config"
	"github.com/viant/embedstore/internal/logger"
	"github.com/viant/embedstore/internal/tracer"
)

type app struct {
	configPath string
	storeName  string
	dimension  int

	store    *docstore.Store
	logger   *slog.Logger
	shutdown []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:          "embedstore",
		Short:        "Embedding-indexed document store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (toml or yaml)")
	rootCmd.PersistentFlags().StringVar(&a.storeName, "store", "", "store name")
	rootCmd.PersistentFlags().IntVar(&a.dimension, "dim", 0, "embedding dimension")

	rootCmd.AddCommand(
		newAddCmd(a),
		newGetCmd(a),
		newSearchCmd(a),
		newDeleteCmd(a),
		newCountCmd(a),
		newClearCmd(a),
		newCompactCmd(a),
		newChangesCmd(a),
	)
	return rootCmd
}

// open loads configuration and builds the store. On failure it releases
// whatever it already opened, since cobra skips PersistentPostRunE.
func (a *app) open(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storeName != "" {
		cfg.Store.Name = a.storeName
	}
	if a.dimension > 0 {
		cfg.Store.Dimension = a.dimension
		cfg.Embedding.Dimension = a.dimension
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = log
	a.shutdown = append(a.shutdown, closeLog)

	shutdownTracer, err := tracer.Setup(ctx, cfg.Trace)
	if err != nil {
		return err
	}
	a.shutdown = append(a.shutdown, func() error { return shutdownTracer(context.Background()) })

	store, err := docstore.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.store = store
	a.shutdown = append(a.shutdown, store.Close)
	return nil
}

func (a *app) close() error {
	var first error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](); err != nil && first == nil {
			first = err
		}
	}
	a.shutdown = nil
	return first
}
