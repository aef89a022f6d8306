package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"dfchat/internal/broker"
	"dfchat/internal/logger"
	"dfchat/pkg/logging"
	"dfchat/pkg/models"
	"dfchat/pkg/retry"
)

// Deduplicator recognizes events the broker delivers more than once.
type Deduplicator interface {
	FirstDelivery(ctx context.Context, event *models.ChatEvent) (bool, error)
}

// Handler feeds chat events from the broker into the Service and forwards
// the ones that survive to the output topic.
type Handler struct {
	service           *Service
	producer          broker.Producer
	outputTopic       string
	forwardSuppressed bool
	publishPolicy     retry.Policy
	dedup             Deduplicator
	logger            logger.Logger
}

func NewHandler(service *Service, producer broker.Producer, outputTopic string, forwardSuppressed bool, log logger.Logger) *Handler {
	return &Handler{
		service:           service,
		producer:          producer,
		outputTopic:       outputTopic,
		forwardSuppressed: forwardSuppressed,
		publishPolicy:     retry.DefaultPolicy(),
		logger:            log,
	}
}

// WithDeduplicator skips events that already went through the pipeline.
func (h *Handler) WithDeduplicator(d Deduplicator) *Handler {
	h.dedup = d
	return h
}

// HandleChatEvent never asks the broker to redeliver an event that was
// already processed: retrying the pipeline would replay its cascade. Publish
// failures are retried here and then reported as fatal.
func (h *Handler) HandleChatEvent(ctx context.Context, value []byte) error {
	var event models.ChatEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return retry.NewFatalError(fmt.Errorf("malformed chat event: %w", err))
	}
	if err := models.ValidateChatEvent(&event); err != nil {
		return retry.NewFatalError(err)
	}

	if event.Metadata.TraceID != "" {
		ctx = logging.WithTraceID(ctx, event.Metadata.TraceID)
	}

	if h.dedup != nil {
		first, err := h.dedup.FirstDelivery(ctx, &event)
		if err != nil {
			// Nothing has run yet, so a redelivery is safe.
			return fmt.Errorf("redelivery check: %w", err)
		}
		if !first {
			h.logger.InfowCtx(ctx, "Skipping redelivered event", "event_id", event.ID)
			return nil
		}
	}

	res := h.service.Process(ctx, &event, nil)
	if res.Suppressed && !h.forwardSuppressed {
		h.logger.DebugwCtx(ctx, "Event suppressed",
			"type", res.Type.String(),
			"hidden_by_group", res.HiddenByGroup,
			"sound_muted", res.SoundMuted,
		)
		return nil
	}

	err := retry.Do(ctx, h.publishPolicy, func() error {
		return h.producer.Publish(ctx, h.outputTopic, event.ID, event)
	})
	if err != nil {
		return retry.NewFatalError(fmt.Errorf("failed to forward event: %w", err))
	}
	return nil
}
