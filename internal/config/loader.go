package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const DefaultReleasesURL = "https://api.github.com/repos/homchom/recode/releases/latest"

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", "10s")
	v.SetDefault("server.write_timeout_seconds", "10s")

	v.SetDefault("broker.type", "kafka")
	v.SetDefault("broker.kafka.group_id", "chat-service")
	v.SetDefault("broker.kafka.input_topic", "chat.incoming")
	v.SetDefault("broker.kafka.output_topic", "chat.visible")
	v.SetDefault("broker.kafka.config_update_topic", "chat.config")
	v.SetDefault("broker.kafka.dlq_topic", "chat.incoming.dlq")
	v.SetDefault("broker.kafka.retry.max_attempts", 3)
	v.SetDefault("broker.kafka.retry.initial_interval", "200ms")
	v.SetDefault("broker.kafka.retry.max_interval", "5s")
	v.SetDefault("broker.kafka.retry.multiplier", 2.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("streamer.exemptions", []string{"RyanLand", "Vattendroppen236", "Reasonless"})

	v.SetDefault("rules.source", "static")
	v.SetDefault("rules.reload.interval_seconds", 30)
	v.SetDefault("rules.reload.jitter_max_milliseconds", 1000)
	v.SetDefault("rules.fallback.on_error", "allow")

	v.SetDefault("state.key", "dfchat:state")
	v.SetDefault("state.snapshot_interval_seconds", 10)

	v.SetDefault("deduplication.hash_algorithm", "sha256")
	v.SetDefault("deduplication.ttl_seconds", 600)
	v.SetDefault("deduplication.on_redis_error", "allow")

	v.SetDefault("diagnostics.collection", "cancelled_messages")

	v.SetDefault("version.releases_url", DefaultReleasesURL)
	v.SetDefault("version.timeout_seconds", 5)

	v.SetDefault("management.rate_limit.rps", 20.0)
	v.SetDefault("management.rate_limit.burst", 40)
	v.SetDefault("management.rate_limit.cleanup_interval", 60)
	v.SetDefault("management.rate_limit.max_age", 300)

	v.SetDefault("tracing.service_name", "chat-service")
	v.SetDefault("tracing.sampler.type", "parentbased_always_on")
}

func bindEnvVariables(v *viper.Viper) {
	_ = v.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	_ = v.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	_ = v.BindEnv("broker.kafka.input_topic", "BROKER_KAFKA_INPUT_TOPIC")
	_ = v.BindEnv("broker.kafka.output_topic", "BROKER_KAFKA_OUTPUT_TOPIC")
	_ = v.BindEnv("broker.kafka.config_update_topic", "BROKER_KAFKA_CONFIG_UPDATE_TOPIC")
	_ = v.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")

	_ = v.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	_ = v.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	_ = v.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	_ = v.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	_ = v.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")

	_ = v.BindEnv("server.port", "SERVER_PORT")

	_ = v.BindEnv("logging.level", "LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "LOGGING_FORMAT")

	_ = v.BindEnv("pipeline.debug_mode", "PIPELINE_DEBUG_MODE")
	_ = v.BindEnv("streamer.enabled", "STREAMER_ENABLED")
	_ = v.BindEnv("deduplication.enabled", "DEDUPLICATION_ENABLED")

	_ = v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	_ = v.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	_ = v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	_ = v.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

// applyEnvOverrides handles values viper cannot unmarshal from a plain env
// string, such as the comma separated broker list.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
