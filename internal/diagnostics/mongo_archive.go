package diagnostics

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dfchat/internal/config"
	"dfchat/internal/constants"
	"dfchat/pkg/circuitbreaker"
	"dfchat/pkg/metrics"
)

// MongoArchive keeps cancelled messages in a MongoDB collection. Writes go
// through a circuit breaker so a dead database does not slow the pipeline.
type MongoArchive struct {
	collection *mongo.Collection
	breaker    *circuitbreaker.Wrapper
	timeout    time.Duration
}

func NewMongoArchive(db *mongo.Database, collection string, cbCfg config.CircuitBreakerConfig) *MongoArchive {
	return &MongoArchive{
		collection: db.Collection(collection),
		breaker:    circuitbreaker.NewWrapper(circuitbreaker.FromConfig("mongo-diagnostics", cbCfg)),
		timeout:    constants.ArchiveWriteTimeout,
	}
}

func (a *MongoArchive) Store(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	err := circuitbreaker.Do(ctx, a.breaker, func(ctx context.Context) error {
		_, err := a.collection.InsertOne(ctx, rec)
		return err
	})
	observe("archive_insert", start, err)
	if err != nil {
		return fmt.Errorf("failed to archive record: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (a *MongoArchive) Recent(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "cancelled_at", Value: -1}}).
		SetLimit(int64(limit))

	start := time.Now()
	records, err := circuitbreaker.Execute(ctx, a.breaker, func(ctx context.Context) ([]Record, error) {
		cursor, err := a.collection.Find(ctx, bson.D{}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		records := make([]Record, 0, limit)
		if err := cursor.All(ctx, &records); err != nil {
			return nil, err
		}
		return records, nil
	})
	observe("archive_find", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return records, nil
}

func observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery(constants.ServiceName, "mongodb", operation, status)
	metrics.ObserveDatabaseQueryDuration(constants.ServiceName, "mongodb", operation, time.Since(start))
}
