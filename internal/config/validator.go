package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic checks the configuration without touching the network.
// All violations are returned together.
func ValidateStatic(cfg *Config) error {
	var errs []error

	for _, validate := range []func(*Config) error{
		validateServer,
		validateBroker,
		validateDatabase,
		validateRules,
		validateState,
		validateDeduplication,
		validateDiagnostics,
		validateVersion,
	} {
		if err := validate(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateServer(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Server.Port),
		}
	}

	if cfg.Server.ReadTimeoutSeconds <= 0 {
		return &ValidationError{Field: "server.read_timeout_seconds", Message: "read timeout must be positive"}
	}

	if cfg.Server.WriteTimeoutSeconds <= 0 {
		return &ValidationError{Field: "server.write_timeout_seconds", Message: "write timeout must be positive"}
	}

	return nil
}

func validateBroker(cfg *Config) error {
	if cfg.Broker.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %q (supported: kafka)", cfg.Broker.Type),
		}
	}

	k := cfg.Broker.Kafka
	if len(k.Brokers) == 0 {
		return &ValidationError{Field: "broker.kafka.brokers", Message: "at least one Kafka broker is required"}
	}

	for i, broker := range k.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if k.GroupID == "" {
		return &ValidationError{Field: "broker.kafka.group_id", Message: "Kafka consumer group ID is required"}
	}

	if k.InputTopic == "" || k.OutputTopic == "" {
		return &ValidationError{Field: "broker.kafka.input_topic", Message: "input and output topics are required"}
	}

	if k.InputTopic == k.OutputTopic {
		return &ValidationError{Field: "broker.kafka.output_topic", Message: "output topic must differ from input topic"}
	}

	if k.Retry.MaxAttempts < 0 {
		return &ValidationError{Field: "broker.kafka.retry.max_attempts", Message: "max_attempts must be non-negative"}
	}

	if k.Retry.MaxInterval > 0 && k.Retry.InitialInterval > 0 && k.Retry.MaxInterval < k.Retry.InitialInterval {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if k.Retry.Multiplier <= 0 {
		return &ValidationError{Field: "broker.kafka.retry.multiplier", Message: "multiplier must be positive"}
	}

	return nil
}

func validateDatabase(cfg *Config) error {
	db := cfg.Database

	if db.Postgres.Configured() {
		if db.Postgres.Port < 1 || db.Postgres.Port > 65535 {
			return &ValidationError{
				Field:   "database.postgres.port",
				Message: fmt.Sprintf("port must be between 1 and 65535, got %d", db.Postgres.Port),
			}
		}
		if db.Postgres.User == "" {
			return &ValidationError{Field: "database.postgres.user", Message: "PostgreSQL user is required"}
		}
		if db.Postgres.DBName == "" {
			return &ValidationError{Field: "database.postgres.dbname", Message: "PostgreSQL database name is required"}
		}
		validSSLModes := map[string]bool{
			"disable": true, "allow": true, "prefer": true,
			"require": true, "verify-ca": true, "verify-full": true,
		}
		if db.Postgres.SSLMode != "" && !validSSLModes[strings.ToLower(db.Postgres.SSLMode)] {
			return &ValidationError{
				Field:   "database.postgres.sslmode",
				Message: fmt.Sprintf("invalid SSL mode: %s", db.Postgres.SSLMode),
			}
		}
	}

	if db.Redis.Configured() && (db.Redis.Port < 1 || db.Redis.Port > 65535) {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", db.Redis.Port),
		}
	}

	if db.MongoDB.Configured() {
		if !strings.HasPrefix(db.MongoDB.URI, "mongodb://") && !strings.HasPrefix(db.MongoDB.URI, "mongodb+srv://") {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
			}
		}
		if db.MongoDB.Database == "" {
			return &ValidationError{Field: "database.mongodb.database", Message: "MongoDB database name is required"}
		}
	}

	return nil
}

func validateRules(cfg *Config) error {
	r := cfg.Rules

	switch r.Source {
	case "", "static":
	case "postgres":
		if !cfg.Database.Postgres.Configured() {
			return &ValidationError{Field: "rules.source", Message: "postgres rule source requires database.postgres"}
		}
	default:
		return &ValidationError{
			Field:   "rules.source",
			Message: fmt.Sprintf("invalid rule source: %s (valid: static, postgres)", r.Source),
		}
	}

	switch strings.ToLower(r.Fallback.OnError) {
	case "", "allow", "deny":
	default:
		return &ValidationError{
			Field:   "rules.fallback.on_error",
			Message: fmt.Sprintf("invalid on_error value: %s (valid: allow, deny)", r.Fallback.OnError),
		}
	}

	if r.Reload.IntervalSeconds < 0 || r.Reload.JitterMaxMilliseconds < 0 {
		return &ValidationError{Field: "rules.reload", Message: "reload interval and jitter must be non-negative"}
	}

	seen := make(map[string]bool, len(r.Static))
	for i, rule := range r.Static {
		if rule.ID == "" || rule.Expression == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("rules.static[%d]", i),
				Message: "id and expression are required",
			}
		}
		if seen[rule.ID] {
			return &ValidationError{
				Field:   fmt.Sprintf("rules.static[%d].id", i),
				Message: fmt.Sprintf("duplicate rule id %q", rule.ID),
			}
		}
		seen[rule.ID] = true
	}

	return nil
}

func validateState(cfg *Config) error {
	if !cfg.State.Persist {
		return nil
	}
	if !cfg.Database.Redis.Configured() {
		return &ValidationError{Field: "state.persist", Message: "state persistence requires database.redis"}
	}
	if cfg.State.Key == "" {
		return &ValidationError{Field: "state.key", Message: "state key is required when persisting"}
	}
	return nil
}

func validateDiagnostics(cfg *Config) error {
	if cfg.Diagnostics.Archive && !cfg.Database.MongoDB.Configured() {
		return &ValidationError{Field: "diagnostics.archive", Message: "archiving requires database.mongodb"}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if !cfg.Version.Enabled {
		return nil
	}
	u, err := url.Parse(cfg.Version.ReleasesURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "version.releases_url", Message: "a valid absolute URL is required"}
	}
	return nil
}

func validateDeduplication(cfg *Config) error {
	d := cfg.Deduplication
	if !d.Enabled {
		return nil
	}

	if !cfg.Database.Redis.Configured() {
		return &ValidationError{Field: "deduplication.enabled", Message: "deduplication requires database.redis"}
	}

	if d.TTLSeconds <= 0 {
		return &ValidationError{Field: "deduplication.ttl_seconds", Message: "ttl must be positive"}
	}

	switch strings.ToLower(d.HashAlgorithm) {
	case "", "sha256", "md5":
	default:
		return &ValidationError{
			Field:   "deduplication.hash_algorithm",
			Message: fmt.Sprintf("invalid hash algorithm: %s (valid: sha256, md5)", d.HashAlgorithm),
		}
	}

	switch strings.ToLower(d.OnRedisError) {
	case "", "allow", "deny":
	default:
		return &ValidationError{
			Field:   "deduplication.on_redis_error",
			Message: fmt.Sprintf("invalid on_redis_error value: %s (valid: allow, deny)", d.OnRedisError),
		}
	}

	return nil
}
