//go:build integration

package diagnostics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dfchat/internal/config"
	"dfchat/pkg/migrations"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:6")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	require.NoError(t, client.Ping(ctx, nil))
	return client.Database("dfchat_test")
}

func TestMongoArchive_StoreAndRecent(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	require.NoError(t, migrations.EnsureDiagnosticsCollection(ctx, db, "cancelled_messages"))

	archive := NewMongoArchive(db, "cancelled_messages", config.CircuitBreakerConfig{})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, archive.Store(ctx, Record{
			EventID:     text,
			Type:        "PLOT_AD",
			Text:        text,
			CancelledAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := archive.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].EventID)
	assert.Equal(t, "second", recent[1].EventID)
	assert.True(t, recent[0].CancelledAt.Equal(base.Add(2*time.Minute)))
}
