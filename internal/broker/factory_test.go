package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfchat/internal/config"
	"dfchat/internal/logger"
)

func brokerConfig() config.BrokerConfig {
	return config.BrokerConfig{
		Type: "kafka",
		Kafka: config.KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			GroupID:  "chat-service",
			DLQTopic: "chat.dlq",
		},
	}
}

func TestNewConsumer_Roles(t *testing.T) {
	chat, err := NewConsumer(brokerConfig(), RoleChat, "chat-service", "host-1", logger.NopLogger())
	require.NoError(t, err)
	kc := chat.(*KafkaConsumer)
	assert.Equal(t, "chat-service", kc.cfg.GroupID)
	assert.Equal(t, "chat-service", kc.serviceName)
	assert.NotNil(t, kc.dlqProducer)

	cfgConsumer, err := NewConsumer(brokerConfig(), RoleConfig, "chat-service", "host-1", logger.NopLogger())
	require.NoError(t, err)
	kc = cfgConsumer.(*KafkaConsumer)
	assert.Equal(t, "chat-service.config.host-1", kc.cfg.GroupID)
	assert.Empty(t, kc.cfg.DLQTopic)
	assert.Nil(t, kc.dlqProducer)
}

func TestNewConsumer_Errors(t *testing.T) {
	_, err := NewConsumer(brokerConfig(), RoleConfig, "chat-service", "", logger.NopLogger())
	assert.ErrorContains(t, err, "config consumer requires an instance id")

	cfg := brokerConfig()
	cfg.Type = "nats"
	_, err = NewConsumer(cfg, RoleChat, "chat-service", "host-1", logger.NopLogger())
	assert.ErrorContains(t, err, "unknown broker type")

	_, err = NewProducer(cfg, logger.NopLogger())
	assert.Error(t, err)
}
