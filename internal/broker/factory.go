package broker

import (
	"fmt"

	"dfchat/internal/config"
	"dfchat/internal/logger"
)

// ConsumerRole decides how a consumer joins its consumer group.
type ConsumerRole int

const (
	// RoleChat shares the configured group, so each chat event is handled by
	// exactly one instance.
	RoleChat ConsumerRole = iota
	// RoleConfig joins a group of its own, so every instance sees every
	// config event. Config events are never dead-lettered.
	RoleConfig
)

func (r ConsumerRole) String() string {
	if r == RoleConfig {
		return "config"
	}
	return "chat"
}

// ConfigGroupID is the per-instance group used for config events.
func ConfigGroupID(groupID, instanceID string) string {
	return fmt.Sprintf("%s.config.%s", groupID, instanceID)
}

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	if cfg.Type != "kafka" {
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
	return NewKafkaProducer(cfg.Kafka, log), nil
}

// NewConsumer builds a consumer for role. instanceID is only used by
// RoleConfig.
func NewConsumer(cfg config.BrokerConfig, role ConsumerRole, serviceName, instanceID string, log logger.Logger) (Consumer, error) {
	if cfg.Type != "kafka" {
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}

	kcfg := cfg.Kafka
	if role == RoleConfig {
		if instanceID == "" {
			return nil, fmt.Errorf("%s consumer requires an instance id", role)
		}
		kcfg.GroupID = ConfigGroupID(kcfg.GroupID, instanceID)
		kcfg.DLQTopic = ""
	}

	consumer := NewKafkaConsumer(kcfg, log)
	consumer.SetServiceName(serviceName)
	return consumer, nil
}
