// Package deduplication remembers which chat events have already gone
// through the pipeline, so a broker redelivery does not replay a cascade.
package deduplication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dfchat/internal/config"
	"dfchat/internal/constants"
	"dfchat/internal/logger"
	"dfchat/pkg/metrics"
	"dfchat/pkg/models"
	"dfchat/pkg/tracing"
)

type Service struct {
	repo   SeenStore
	hasher *Hasher
	ttl    time.Duration
	allow  bool
	logger logger.Logger
}

func NewService(repo SeenStore, cfg config.DeduplicationConfig, log logger.Logger) *Service {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Service{
		repo:   repo,
		hasher: NewHasher(cfg.HashAlgorithm),
		ttl:    ttl,
		allow:  !strings.EqualFold(cfg.OnRedisError, constants.FallbackDeny),
		logger: log,
	}
}

// FirstDelivery reports whether event has not been seen within the TTL and
// marks it as seen. When the store fails, the configured fallback decides:
// "allow" treats the event as new, "deny" returns the error.
func (s *Service) FirstDelivery(ctx context.Context, event *models.ChatEvent) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "deduplication.first_delivery")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := constants.CacheKeyPrefixDedup + s.hasher.Key(event)
	start := time.Now()
	first, err := s.repo.MarkSeen(ctx, key, start, s.ttl)
	duration := time.Since(start)

	if err != nil {
		metrics.ObserveDedupCheck(duration, "error")
		return s.handleStoreError(ctx, err, event.ID)
	}

	if first {
		metrics.ObserveDedupCheck(duration, "unique")
	} else {
		metrics.ObserveDedupCheck(duration, "duplicate")
	}
	return first, nil
}

func (s *Service) handleStoreError(ctx context.Context, err error, eventID string) (bool, error) {
	if s.allow {
		metrics.IncFallbackUsage("deduplication", "allow_on_error")
		s.logger.WarnwCtx(ctx, "Dedup store error, treating event as new (fallback: allow)",
			"event_id", eventID,
			"error", err,
		)
		return true, nil
	}

	metrics.IncFallbackUsage("deduplication", "deny_on_error")
	return false, fmt.Errorf("dedup check for event %s: %w", eventID, err)
}

// RunCacheMetrics refreshes the cache size gauge until ctx is done.
func (s *Service) RunCacheMetrics(ctx context.Context) error {
	ticker := time.NewTicker(constants.DedupCacheMetricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			size, err := s.repo.CountSeen(ctx, constants.CacheKeyPrefixDedup)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Debugw("Failed to count dedup keys", "error", err)
				continue
			}
			metrics.SetDedupCacheSize(size)
		}
	}
}
