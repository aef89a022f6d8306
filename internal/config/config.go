package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Broker         BrokerConfig
	Logging        LoggingConfig
	Pipeline       PipelineConfig
	Streamer       StreamerConfig
	Rules          RulesConfig
	State          StateConfig
	Deduplication  DeduplicationConfig
	Diagnostics    DiagnosticsConfig
	Version        VersionConfig
	Management     ManagementConfig
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig
	Redis         RedisConfig
	MongoDB       MongoDBConfig
	RunMigrations bool `mapstructure:"run_migrations"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c PostgresConfig) Configured() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Configured() bool {
	return c.Host != ""
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

func (c MongoDBConfig) Configured() bool {
	return c.URI != ""
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers           []string    `mapstructure:"brokers"`
	GroupID           string      `mapstructure:"group_id"`
	InputTopic        string      `mapstructure:"input_topic"`
	OutputTopic       string      `mapstructure:"output_topic"`
	ConfigUpdateTopic string      `mapstructure:"config_update_topic"`
	DLQTopic          string      `mapstructure:"dlq_topic"`
	Retry             RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PipelineConfig struct {
	// DebugMode logs and archives the text of every cancelled message.
	DebugMode bool `mapstructure:"debug_mode"`
	// ForwardSuppressed publishes suppressed events with their
	// classification instead of dropping them.
	ForwardSuppressed bool `mapstructure:"forward_suppressed"`
}

type StreamerConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	HideDirectMessages bool     `mapstructure:"hide_direct_messages"`
	HideSupport        bool     `mapstructure:"hide_support"`
	HidePlotAds        bool     `mapstructure:"hide_plot_ads"`
	HidePlotBoosts     bool     `mapstructure:"hide_plot_boosts"`
	Exemptions         []string `mapstructure:"exemptions"`
}

type RulesConfig struct {
	Source   string           `mapstructure:"source"` // "static" (default) or "postgres"
	Static   []HideRuleConfig `mapstructure:"static"`
	Reload   ReloadConfig     `mapstructure:"reload"`
	Fallback FallbackConfig   `mapstructure:"fallback"`
}

type HideRuleConfig struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
	Priority   int    `mapstructure:"priority"`
	Enabled    bool   `mapstructure:"enabled"`
}

type ReloadConfig struct {
	IntervalSeconds       int `mapstructure:"interval_seconds"`
	JitterMaxMilliseconds int `mapstructure:"jitter_max_milliseconds"`
}

type FallbackConfig struct {
	OnError string `mapstructure:"on_error"` // "allow" (default) or "deny"
}

type StateConfig struct {
	Persist                 bool   `mapstructure:"persist"`
	Key                     string `mapstructure:"key"`
	SnapshotIntervalSeconds int    `mapstructure:"snapshot_interval_seconds"`
}

// DeduplicationConfig guards the pipeline against redelivered chat events.
// It needs Redis.
type DeduplicationConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	HashAlgorithm string `mapstructure:"hash_algorithm"` // "sha256" (default) or "md5"
	TTLSeconds    int    `mapstructure:"ttl_seconds"`
	OnRedisError  string `mapstructure:"on_redis_error"` // "allow" (default) or "deny"
}

type DiagnosticsConfig struct {
	Archive    bool   `mapstructure:"archive"`
	Collection string `mapstructure:"collection"`
}

type VersionConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ReleasesURL    string `mapstructure:"releases_url"`
	Current        string `mapstructure:"current"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ManagementConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
