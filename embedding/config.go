package embedding

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Providers understood by New.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config selects and tunes an embedding provider.
type Config struct {
	Provider  string `toml:"provider" yaml:"provider"`
	Model     string `toml:"model" yaml:"model"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	APIKey    string `toml:"api_key" yaml:"api_key"`
	Dimension int    `toml:"dimension" yaml:"dimension"`
	MaxTokens int    `toml:"max_tokens" yaml:"max_tokens"`
	Encoding  string `toml:"encoding" yaml:"encoding"`

	RequestsPerSecond float64       `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `toml:"burst" yaml:"burst"`
	MaxFailures       uint32        `toml:"max_failures" yaml:"max_failures"`
	OpenTimeout       time.Duration `toml:"open_timeout" yaml:"open_timeout"`
}

// New builds the embedder described by cfg. Remote providers are wrapped
// so that input is truncated to MaxTokens, calls are guarded, and inference
// is serialized per model.
func New(cfg Config, logger *slog.Logger) (Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding: dimension must be positive, got %d", cfg.Dimension)
	}

	var inner Embedder
	switch strings.ToLower(cfg.Provider) {
	case ProviderHash, "":
		return NewHash(cfg.Dimension), nil
	case ProviderOpenAI:
		if cfg.Model == "" {
			return nil, fmt.Errorf("embedding: openai provider requires a model")
		}
		inner = NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimension)
	case ProviderOllama:
		if cfg.Model == "" {
			return nil, fmt.Errorf("embedding: ollama provider requires a model")
		}
		inner = NewOllama(cfg.BaseURL, cfg.Model, cfg.Dimension)
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
	}

	var tokenizer Tokenizer
	tok, err := NewTiktoken(cfg.Encoding)
	if err != nil {
		logger.Warn("tokenizer unavailable, truncating by bytes", "encoding", cfg.Encoding, "error", err)
		tokenizer = Bytes{}
	} else {
		tokenizer = tok
	}

	truncated := NewTruncating(inner, tokenizer, cfg.MaxTokens)
	guarded := NewGuarded(truncated, GuardConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		MaxFailures:       cfg.MaxFailures,
		OpenTimeout:       cfg.OpenTimeout,
	}, logger)
	logger.Debug("embedding provider ready", "provider", cfg.Provider, "model", cfg.Model, "dimension", cfg.Dimension)
	return NewSerialized(guarded), nil
}
