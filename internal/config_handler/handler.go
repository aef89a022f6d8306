package config_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"dfchat/internal/constants"
	"dfchat/internal/logger"
	"dfchat/internal/streamer"
	"dfchat/pkg/models"
	"dfchat/pkg/retry"
)

type RuleReloader interface {
	ReloadRules(ctx context.Context, skipJitter ...bool) error
}

type SettingsUpdater interface {
	Update(s streamer.Settings) error
}

// Handler applies config update events from the config topic. Instances
// without a reloader or updater ignore the matching events.
type Handler struct {
	reloader RuleReloader
	updater  SettingsUpdater
	logger   logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{logger: log}
}

func (h *Handler) WithReloader(reloader RuleReloader) *Handler {
	h.reloader = reloader
	return h
}

func (h *Handler) WithUpdater(updater SettingsUpdater) *Handler {
	h.updater = updater
	return h
}

func (h *Handler) HandleConfigUpdateEvent(ctx context.Context, value []byte) error {
	var event models.ConfigUpdateEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to unmarshal config event", "error", err)
		return retry.NewFatalError(fmt.Errorf("malformed config event: %w", err))
	}

	if event.EventType == "" {
		h.logger.WarnwCtx(ctx, "Config event missing event_type")
		return nil
	}

	h.logger.InfowCtx(ctx, "Received config update event",
		"event_type", event.EventType,
		"action", event.Action,
		"rule_id", event.RuleID,
	)

	switch event.EventType {
	case constants.EventHideRuleUpdated:
		return h.reloadRules(ctx, event)
	case constants.EventStreamerSettingsUpdated:
		return h.updateSettings(ctx, event)
	default:
		h.logger.DebugwCtx(ctx, "Ignoring config event", "event_type", event.EventType)
		return nil
	}
}

func (h *Handler) reloadRules(ctx context.Context, event models.ConfigUpdateEvent) error {
	if h.reloader == nil {
		return nil
	}

	// Every instance receives the event; jitter spreads the database load.
	if err := h.reloader.ReloadRules(ctx); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to reload rules after config update", "error", err)
		return err
	}

	h.logger.InfowCtx(ctx, "Rules reloaded successfully after config update", "action", event.Action)
	return nil
}

func (h *Handler) updateSettings(ctx context.Context, event models.ConfigUpdateEvent) error {
	if h.updater == nil {
		return nil
	}

	if len(event.Settings) == 0 {
		return retry.NewFatalError(fmt.Errorf("streamer settings event without settings"))
	}

	var settings streamer.Settings
	if err := json.Unmarshal(event.Settings, &settings); err != nil {
		return retry.NewFatalError(fmt.Errorf("malformed streamer settings: %w", err))
	}

	if err := h.updater.Update(settings); err != nil {
		h.logger.ErrorwCtx(ctx, "Rejected streamer settings", "error", err)
		return retry.NewFatalError(err)
	}

	h.logger.InfowCtx(ctx, "Streamer settings updated",
		"enabled", settings.Enabled,
		"exemptions", len(settings.Exemptions),
	)
	return nil
}
