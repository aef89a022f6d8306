package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
	KafkaReadMaxWait  = 250 * time.Millisecond
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	ServiceName = "chat-service"
)

const (
	DefaultMongoDBName = "dfchat"
)

const (
	DefaultLimit       = 100
	MaxLimit           = 1000
	DefaultTruncateLen = 256
)

const (
	ArchiveWriteTimeout = 2 * time.Second
)

const (
	CacheKeyPrefixDedup      = "dfchat:seen:"
	DedupCacheMetricInterval = 30 * time.Second
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	RuleSourceStatic   = "static"
	RuleSourcePostgres = "postgres"
)

// Config update events consumed from the config topic.
const (
	EventHideRuleUpdated         = "hide_rule_updated"
	EventStreamerSettingsUpdated = "streamer_settings_updated"
)

// Outcome labels for processed chat events.
const (
	OutcomeDelivered      = "delivered"
	OutcomeCancelled      = "cancelled"
	OutcomeGrouped        = "hidden_by_group"
	OutcomeSoundMuted     = "sound_suppressed"
	OutcomeSidebarUpdated = "sidebar_updated"
)

// Cancellation sources.
const (
	SourceStreamerMode = "streamer_mode"
	SourceCustomRules  = "custom_rules"
	SourceLineGroup    = "line_group"
)
