package deduplication

import (
	"context"
	"fmt"
	"time"

	"dfchat/internal/config"
	"dfchat/pkg/circuitbreaker"
)

type CircuitBreakerSeenStore struct {
	repo SeenStore
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerSeenStore(repo SeenStore, cfg config.CircuitBreakerConfig) *CircuitBreakerSeenStore {
	if !cfg.Enabled {
		return &CircuitBreakerSeenStore{repo: repo}
	}

	return &CircuitBreakerSeenStore{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(circuitbreaker.FromConfig("redis-dedup", cfg)),
	}
}

func (r *CircuitBreakerSeenStore) MarkSeen(ctx context.Context, key string, seenAt time.Time, ttl time.Duration) (bool, error) {
	if r.cb == nil {
		return r.repo.MarkSeen(ctx, key, seenAt, ttl)
	}

	ok, err := circuitbreaker.Execute(ctx, r.cb, func(ctx context.Context) (bool, error) {
		return r.repo.MarkSeen(ctx, key, seenAt, ttl)
	})
	if err != nil {
		return false, fmt.Errorf("dedup store (breaker %s): %w", r.State(), err)
	}
	return ok, nil
}

func (r *CircuitBreakerSeenStore) CountSeen(ctx context.Context, prefix string) (int, error) {
	if r.cb == nil {
		return r.repo.CountSeen(ctx, prefix)
	}

	return circuitbreaker.Execute(ctx, r.cb, func(ctx context.Context) (int, error) {
		return r.repo.CountSeen(ctx, prefix)
	})
}

func (r *CircuitBreakerSeenStore) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}

func (r *CircuitBreakerSeenStore) IsOpen() bool {
	return r.cb != nil && r.cb.IsOpen()
}
