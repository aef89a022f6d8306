package deduplication

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore remembers which chat events already went through the pipeline.
type SeenStore interface {
	// MarkSeen records key until ttl expires and reports whether this was
	// the first time the key was seen.
	MarkSeen(ctx context.Context, key string, seenAt time.Time, ttl time.Duration) (bool, error)
	CountSeen(ctx context.Context, prefix string) (int, error)
}

const seenScanBatch = 500

type RedisSeenStore struct {
	client *redis.Client
}

func NewRedisSeenStore(client *redis.Client) *RedisSeenStore {
	return &RedisSeenStore{client: client}
}

// MarkSeen stores the time of the first delivery as the value.
func (s *RedisSeenStore) MarkSeen(ctx context.Context, key string, seenAt time.Time, ttl time.Duration) (bool, error) {
	first, err := s.client.SetNX(ctx, key, seenAt.UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event %s seen: %w", key, err)
	}
	return first, nil
}

func (s *RedisSeenStore) CountSeen(ctx context.Context, prefix string) (int, error) {
	iter := s.client.Scan(ctx, 0, prefix+"*", seenScanBatch).Iterator()
	count := 0
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count seen events: %w", err)
	}
	return count, nil
}
