package checks

import (
	"context"
	"fmt"
	"regexp"

	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/pkg/metrics"
)

var (
	lagSlayerStartPattern = regexp.MustCompile(`^\[LagSlayer\] Now monitoring plot .*\. Type /lagslayer to stop monitoring\.$`)
	lagSlayerStopPattern  = regexp.MustCompile(
		`^\[LagSlayer\] Stopped monitoring plot .*\.$` +
			`|^Error: You must be in a plot to use this command!$` +
			`|^Error: You can't monitor this plot!$`,
	)
)

type LagSlayerCheck struct {
	patternCheck
	typ     message.Type
	enables bool
	tracker *state.Tracker
}

func NewLagSlayerStart(tracker *state.Tracker) *LagSlayerCheck {
	return &LagSlayerCheck{
		patternCheck: patternCheck{pattern: lagSlayerStartPattern},
		typ:          message.LagSlayerStart,
		enables:      true,
		tracker:      tracker,
	}
}

// NewLagSlayerStop also matches the errors LagSlayer reports when it cannot
// monitor, since those leave it disabled too.
func NewLagSlayerStop(tracker *state.Tracker) *LagSlayerCheck {
	return &LagSlayerCheck{
		patternCheck: patternCheck{pattern: lagSlayerStopPattern},
		typ:          message.LagSlayerStop,
		tracker:      tracker,
	}
}

func (c *LagSlayerCheck) Type() message.Type { return c.typ }

func (c *LagSlayerCheck) HideCategory() message.HideCategory { return message.HideNone }

func (c *LagSlayerCheck) OnReceive(ctx context.Context, msg *message.Message) error {
	if c.tracker == nil {
		return fmt.Errorf("lagslayer check: tracker not set: %w", message.ErrUnavailable)
	}
	c.tracker.SetLagSlayer(c.enables)
	metrics.IncStateUpdate("lagslayer_enabled")
	return nil
}
