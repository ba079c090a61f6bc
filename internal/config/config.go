package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/viant/embedstore/embedding"
	"github.com/viant/embedstore/vector"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Search ranking modes.
const (
	RankingScan = "scan"
	RankingSQL  = "sql"
)

// Config is the embedstore configuration file.
type Config struct {
	DataDir   string           `toml:"data_dir" yaml:"data_dir"`
	Store     StoreConfig      `toml:"store" yaml:"store"`
	Embedding embedding.Config `toml:"embedding" yaml:"embedding"`
	Log       LogConfig        `toml:"log" yaml:"log"`
	Trace     TraceConfig      `toml:"trace" yaml:"trace"`
}

// StoreConfig selects the record store backend and its vector dimension.
// Ranking "sql" scores inside SQLite instead of scanning into the ranker.
type StoreConfig struct {
	Name      string `toml:"name" yaml:"name"`
	Dimension int    `toml:"dimension" yaml:"dimension"`
	Driver    string `toml:"driver" yaml:"driver"`
	DSN       string `toml:"dsn" yaml:"dsn"`
	ChangeLog bool   `toml:"change_log" yaml:"change_log"`
	Ranking   string `toml:"ranking" yaml:"ranking"`
}

// LogConfig configures the slog handler: level, text or json format, and
// stdout, stderr or a file path as output.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	Output string `toml:"output" yaml:"output"`
}

// TraceConfig enables OpenTelemetry tracing with the named exporter.
type TraceConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	Exporter string `toml:"exporter" yaml:"exporter"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Store: StoreConfig{
			Name:      "documents",
			Dimension: embedding.DefaultDimension,
			Driver:    DriverSQLite,
			Ranking:   RankingScan,
		},
		Embedding: embedding.Config{
			Provider:  embedding.ProviderHash,
			MaxTokens: embedding.DefaultMaxTokens,
			Encoding:  embedding.DefaultEncoding,
		},
		Log: LogConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// Load reads path over the defaults. An empty path selects the per-user
// config file; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		if err := decode(path, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if strings.HasPrefix(cfg.DataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: expand data_dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, cfg.DataDir[2:])
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = cfg.Store.Dimension
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Store.Name == "" {
		return fmt.Errorf("config: store name is required")
	}
	if c.Store.Dimension <= 0 {
		return fmt.Errorf("config: store dimension must be positive, got %d", c.Store.Dimension)
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.DataDir == "" {
			return fmt.Errorf("config: data_dir is required for sqlite")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: postgres driver requires dsn")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.Store.Ranking {
	case RankingScan, "":
	case RankingSQL:
		if c.Store.Driver != DriverSQLite {
			return fmt.Errorf("config: sql ranking requires the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown ranking %q", c.Store.Ranking)
	}
	switch strings.ToLower(c.Embedding.Provider) {
	case embedding.ProviderHash, embedding.ProviderOpenAI, embedding.ProviderOllama, "":
	default:
		return fmt.Errorf("config: unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension != c.Store.Dimension {
		return fmt.Errorf("config: embedding dimension %d differs from store dimension %d", c.Embedding.Dimension, c.Store.Dimension)
	}
	return nil
}

// StorePath returns the SQLite file of the configured store.
func (c *Config) StorePath() string {
	return vector.DatabasePath(c.DataDir, c.Store.Name)
}

// Path returns the per-user config file location.
func Path() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "embedstore", "config.toml")
}

func defaultDataDir() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "embedstore")
}
