package bootstrap

import (
	"context"
	"fmt"

	"dfchat/internal/broker"
	"dfchat/internal/config"
	"dfchat/internal/logger"
)

// Base owns the broker clients shared by every consumer loop.
type Base struct {
	Config         *config.Config
	Logger         logger.Logger
	Producer       broker.Producer
	Consumer       broker.Consumer
	ConfigConsumer broker.Consumer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the producer, the chat consumer and, when a config
// topic is set, a consumer for config updates. The config consumer uses its
// own group so that every instance sees every update.
func (b *Base) InitBroker(serviceName, instanceID string) error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer

	consumer, err := broker.NewConsumer(b.Config.Broker, broker.RoleChat, serviceName, instanceID, b.Logger)
	if err != nil {
		b.ShutdownBroker()
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	b.Consumer = consumer

	if b.Config.Broker.Kafka.ConfigUpdateTopic == "" {
		return nil
	}

	configConsumer, err := broker.NewConsumer(b.Config.Broker, broker.RoleConfig, serviceName, instanceID, b.Logger)
	if err != nil {
		b.ShutdownBroker()
		return fmt.Errorf("failed to create config consumer: %w", err)
	}
	b.ConfigConsumer = configConsumer

	return nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Consumer != nil {
		if err := b.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	if b.ConfigConsumer != nil {
		if err := b.ConfigConsumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("config consumer close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	errs = append(errs, b.ShutdownBroker()...)

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
