package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of chat events processed by the pipeline (count)",
		},
		[]string{"type", "outcome"},
	)

	ChatProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_processing_duration_ms",
			Help:    "Time from receipt to final outcome of a chat event in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"kind"},
	)

	CancellationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_cancellations_total",
			Help: "Messages cancelled, by message type and cancelling component (count)",
		},
		[]string{"type", "source"},
	)

	HiddenLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_hidden_lines_total",
			Help: "Follow-up lines hidden after a multi-line message was cancelled (count)",
		},
	)

	SuppressedSoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_suppressed_sounds_total",
			Help: "Notification sounds dropped after a cancelled message (count)",
		},
	)

	CheckErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_check_errors_total",
			Help: "Check predicates or actions that failed or panicked (count)",
		},
		[]string{"type", "stage"},
	)

	FinalizerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_finalizer_errors_total",
			Help: "Finalizers that failed or panicked (count)",
		},
		[]string{"finalizer"},
	)

	HideRulesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_hide_rules_active",
			Help: "Number of compiled custom hide rules (count)",
		},
	)

	HideRuleEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_hide_rule_evaluations_total",
			Help: "Custom hide rule evaluations (count)",
		},
		[]string{"rule_id", "result"},
	)

	StateUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_state_updates_total",
			Help: "Session state transitions applied by check actions (count)",
		},
		[]string{"field"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Fallback behavior used when a dependency is unavailable (count)",
		},
		[]string{"component", "strategy"},
	)

	DuplicateEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_dedup_checks_total",
			Help: "Redelivery checks on incoming chat events, by result (count)",
		},
		[]string{"status"},
	)

	DedupCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_dedup_check_duration_ms",
			Help:    "Duration of redelivery checks in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"status"},
	)

	DedupCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_dedup_cache_size",
			Help: "Event keys currently remembered for redelivery checks (count)",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"topic", "attempt"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to dead letter queue (count)",
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures in circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of rate limited requests (count)",
		},
		[]string{"status"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 2, 12),
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kafka_consumer_lag",
			Help: "Kafka consumer lag in messages (count)",
		},
		[]string{"service", "topic", "partition"},
	)

	KafkaReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_read_duration_ms",
			Help:    "Duration of Kafka read operations in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of Kafka write operations in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"service", "database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Database query duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "database", "operation"},
	)
)

func RegisterChatMetrics() {
	prometheus.MustRegister(ChatMessagesTotal)
	prometheus.MustRegister(ChatProcessingDuration)
	prometheus.MustRegister(CancellationsTotal)
	prometheus.MustRegister(HiddenLinesTotal)
	prometheus.MustRegister(SuppressedSoundsTotal)
	prometheus.MustRegister(CheckErrorsTotal)
	prometheus.MustRegister(FinalizerErrorsTotal)
	prometheus.MustRegister(HideRulesActive)
	prometheus.MustRegister(HideRuleEvaluationsTotal)
	prometheus.MustRegister(StateUpdatesTotal)
	prometheus.MustRegister(FallbackUsageTotal)
	prometheus.MustRegister(DuplicateEventsTotal)
	prometheus.MustRegister(DedupCheckDuration)
	prometheus.MustRegister(DedupCacheSize)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaMessageSizeBytes)
	prometheus.MustRegister(KafkaConsumerLag)
	prometheus.MustRegister(KafkaReadDuration)
	prometheus.MustRegister(KafkaWriteDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(DatabaseQueriesTotal)
	prometheus.MustRegister(DatabaseQueryDuration)
}

func ObserveChatProcessing(kind string, duration time.Duration) {
	ChatProcessingDuration.WithLabelValues(kind).Observe(float64(duration.Microseconds()) / 1000)
}

func IncChatMessage(messageType, outcome string) {
	ChatMessagesTotal.WithLabelValues(messageType, outcome).Inc()
}

func IncCancellation(messageType, source string) {
	CancellationsTotal.WithLabelValues(messageType, source).Inc()
}

func AddHiddenLines(n int) {
	if n > 0 {
		HiddenLinesTotal.Add(float64(n))
	}
}

func IncSuppressedSound() {
	SuppressedSoundsTotal.Inc()
}

func IncCheckError(messageType, stage string) {
	CheckErrorsTotal.WithLabelValues(messageType, stage).Inc()
}

func IncFinalizerError(finalizer string) {
	FinalizerErrorsTotal.WithLabelValues(finalizer).Inc()
}

func SetHideRulesActive(count int) {
	HideRulesActive.Set(float64(count))
}

func IncHideRuleEvaluation(ruleID, result string) {
	HideRuleEvaluationsTotal.WithLabelValues(ruleID, result).Inc()
}

func IncStateUpdate(field string) {
	StateUpdatesTotal.WithLabelValues(field).Inc()
}

func IncFallbackUsage(component, strategy string) {
	FallbackUsageTotal.WithLabelValues(component, strategy).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func SetKafkaConsumerLag(service, topic string, partition int, lag int64) {
	KafkaConsumerLag.WithLabelValues(service, topic, fmt.Sprintf("%d", partition)).Set(float64(lag))
}

func ObserveKafkaReadDuration(service, topic string, duration time.Duration) {
	KafkaReadDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(service, database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(service, database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(service, database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(service, database, operation).Observe(float64(duration.Milliseconds()))
}

func ObserveDedupCheck(duration time.Duration, status string) {
	DuplicateEventsTotal.WithLabelValues(status).Inc()
	DedupCheckDuration.WithLabelValues(status).Observe(float64(duration.Microseconds()) / 1000)
}

func SetDedupCacheSize(size int) {
	DedupCacheSize.Set(float64(size))
}
