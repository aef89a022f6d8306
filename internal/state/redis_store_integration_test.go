//go:build integration

package state

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"dfchat/internal/logger"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := redismodule.Run(ctx, "redis:8.4.0-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(pingCtx).Err())

	return client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisStore(client, "dfchat:test:state")
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	want := State{
		Mode:             ModePlay,
		Node:             "Node 4",
		PlotID:           1234,
		PlotName:         "Arena",
		PlotOwner:        "Notch",
		LagSlayerEnabled: true,
		UpdatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPersister_WithRedis(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisStore(client, "dfchat:test:persist")
	ctx := context.Background()

	tr := NewTracker(Initial())
	tr.SetMode(ModeBuild)

	p := NewPersister(tr, store, time.Second, nopLogger())
	require.NoError(t, p.Flush(ctx))

	restored := NewTracker(Initial())
	require.NoError(t, NewPersister(restored, store, time.Second, nopLogger()).Restore(ctx))
	assert.Equal(t, ModeBuild, restored.Snapshot().Mode)
}

func nopLogger() logger.Logger { return logger.NopLogger() }
