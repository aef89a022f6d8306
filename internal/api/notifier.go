package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dfchat/internal/broker"
	"dfchat/internal/constants"
	"dfchat/internal/streamer"
	"dfchat/pkg/models"
)

// ConfigEventProducer announces admin changes on the config topic so every
// instance applies them.
type ConfigEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewConfigEventProducer(producer broker.Producer, topic string) *ConfigEventProducer {
	return &ConfigEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *ConfigEventProducer) PublishHideRuleEvent(ctx context.Context, action, ruleID string) error {
	return p.publishEvent(ctx, models.ConfigUpdateEvent{
		EventType: constants.EventHideRuleUpdated,
		Action:    action,
		RuleID:    ruleID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *ConfigEventProducer) PublishStreamerSettings(ctx context.Context, settings streamer.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal streamer settings: %w", err)
	}
	return p.publishEvent(ctx, models.ConfigUpdateEvent{
		EventType: constants.EventStreamerSettingsUpdated,
		Action:    "update",
		Settings:  raw,
		Timestamp: time.Now().UTC(),
	})
}

func (p *ConfigEventProducer) publishEvent(ctx context.Context, event models.ConfigUpdateEvent) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, event.EventType, event)
}
