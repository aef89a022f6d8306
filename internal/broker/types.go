package broker

import (
	"context"
	"encoding/json"
	"time"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

// HandlerFunc processes one record value. Returning an error wrapped with
// retry.NewFatalError sends the record to the DLQ without retrying.
type HandlerFunc func(ctx context.Context, value []byte) error

// DeadLetter is what lands on the DLQ topic.
type DeadLetter struct {
	Payload     json.RawMessage `json:"payload"`
	Reason      string          `json:"reason"`
	SourceTopic string          `json:"source_topic"`
	FailedAt    time.Time       `json:"failed_at"`
}
