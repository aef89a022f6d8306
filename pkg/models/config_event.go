package models

import (
	"encoding/json"
	"time"
)

// ConfigUpdateEvent announces a change to hide rules or streamer settings.
type ConfigUpdateEvent struct {
	EventType string          `json:"event_type"`
	Action    string          `json:"action,omitempty"`
	RuleID    string          `json:"rule_id,omitempty"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
