package state

import (
	"context"
	"fmt"

	"dfchat/internal/config"
	"dfchat/pkg/circuitbreaker"
)

// CircuitBreakerStore stops hammering the snapshot store while it is down.
type CircuitBreakerStore struct {
	store Store
	cb    *circuitbreaker.Wrapper
}

func NewCircuitBreakerStore(store Store, cfg config.CircuitBreakerConfig) *CircuitBreakerStore {
	if !cfg.Enabled {
		return &CircuitBreakerStore{store: store}
	}

	return &CircuitBreakerStore{
		store: store,
		cb:    circuitbreaker.NewWrapper(circuitbreaker.FromConfig("redis-state", cfg)),
	}
}

func (s *CircuitBreakerStore) Save(ctx context.Context, st State) error {
	if s.cb == nil {
		return s.store.Save(ctx, st)
	}
	if err := circuitbreaker.Do(ctx, s.cb, func(ctx context.Context) error {
		return s.store.Save(ctx, st)
	}); err != nil {
		return fmt.Errorf("state store (breaker %s): %w", s.State(), err)
	}
	return nil
}

func (s *CircuitBreakerStore) Load(ctx context.Context) (State, error) {
	if s.cb == nil {
		return s.store.Load(ctx)
	}
	return circuitbreaker.Execute(ctx, s.cb, func(ctx context.Context) (State, error) {
		return s.store.Load(ctx)
	})
}

func (s *CircuitBreakerStore) State() string {
	if s.cb == nil {
		return "disabled"
	}
	return s.cb.State().String()
}
