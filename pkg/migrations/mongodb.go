package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureDiagnosticsCollection creates the indexes used to browse the
// cancelled message archive. The collection itself is created on first
// insert.
func EnsureDiagnosticsCollection(ctx context.Context, db *mongo.Database, name string) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cancelled_at", Value: -1}},
			Options: options.Index().SetName("idx_" + name + "_cancelled_at"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "cancelled_at", Value: -1}},
			Options: options.Index().SetName("idx_" + name + "_type_cancelled_at"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_event_id"),
		},
	}

	_, err := db.Collection(name).Indexes().CreateMany(ctx, indexes)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
