package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Default circuit breaker settings.
const (
	defaultMaxFailures uint32        = 5
	defaultOpenTimeout time.Duration = 30 * time.Second
	defaultInterval    time.Duration = 60 * time.Second
)

// GuardConfig configures rate limiting and circuit breaking for a remote
// model.
type GuardConfig struct {
	// RequestsPerSecond caps call rate; zero disables limiting.
	RequestsPerSecond float64
	// Burst is the limiter bucket size; defaults to 1.
	Burst int
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a probe.
	OpenTimeout time.Duration
	// Interval clears failure counts while closed.
	Interval time.Duration
}

// Guarded routes calls through a token-bucket limiter and a circuit breaker
// so a failing provider is not hammered.
type Guarded struct {
	inner   Embedder
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]float32]
	logger  *slog.Logger
}

// NewGuarded wraps inner. Zero config values select defaults.
func NewGuarded(inner Embedder, cfg GuardConfig, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = defaultOpenTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	cb := gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "embedding:" + inner.Name(),
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &Guarded{inner: inner, limiter: limiter, breaker: cb, logger: logger}
}

// Embed implements Embedder.
func (g *Guarded) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding: rate limit: %w", err)
		}
	}
	vec, err := g.breaker.Execute(func() ([]float32, error) {
		return g.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, g.inner.Name(), err)
		}
		return nil, err
	}
	return vec, nil
}

// State returns the current circuit breaker state.
func (g *Guarded) State() gobreaker.State { return g.breaker.State() }

// Dimension implements Embedder.
func (g *Guarded) Dimension() int { return g.inner.Dimension() }

// Name implements Embedder.
func (g *Guarded) Name() string { return g.inner.Name() }
