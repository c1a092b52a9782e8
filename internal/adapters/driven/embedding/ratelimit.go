// Package embedding holds decorators shared by the embedding adapters.
package embedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// Rate limit defaults.
const (
	DefaultBurst      = 1
	DefaultMaxRetries = 3
	DefaultBackoff    = 10 * time.Second
)

// RateLimitConfig configures the RateLimited decorator.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// MaxRetries bounds the retries after a rate-limited response.
	MaxRetries int

	// Backoff is the pause after a rate-limited response, doubled on each retry.
	Backoff time.Duration
}

// RateLimited throttles calls to an embedding service and retries calls the
// provider rejected with domain.ErrRateLimited.
type RateLimited struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
	cfg     RateLimitConfig

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimited wraps next.
func NewRateLimited(next driven.EmbeddingService, cfg RateLimitConfig) *RateLimited {
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		cfg:     cfg,
	}
}

// Embed generates one embedding.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.do(ctx, func() error {
		var err error
		out, err = r.next.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for texts with a single token.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.do(ctx, func() error {
		var err error
		out, err = r.next.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (r *RateLimited) do(ctx context.Context, call func() error) error {
	backoff := r.cfg.Backoff
	for attempt := 0; ; attempt++ {
		if err := r.wait(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil || !errors.Is(err, domain.ErrRateLimited) || attempt >= r.cfg.MaxRetries {
			return err
		}

		logger.Warn("embedding rate limited, retrying in %s (attempt %d/%d)", backoff, attempt+1, r.cfg.MaxRetries)
		r.mu.Lock()
		r.retryAt = time.Now().Add(backoff)
		r.mu.Unlock()
		backoff *= 2
	}
}

// wait blocks for any backoff period and then for a token.
func (r *RateLimited) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Dimensions returns the wrapped service's vector size.
func (r *RateLimited) Dimensions() int {
	return r.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (r *RateLimited) ModelName() string {
	return r.next.ModelName()
}

// Ping checks the wrapped service without consuming a token.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimited) Close() error {
	return r.next.Close()
}
