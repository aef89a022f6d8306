package checks

import (
	"context"
	"fmt"
	"strings"

	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/pkg/metrics"
	"dfchat/pkg/models"
)

// LocateCheck recognises the player's own /locate report. The report is a
// single multi-line component carrying a run_command click action.
type LocateCheck struct {
	tracker *state.Tracker
}

func NewLocate(tracker *state.Tracker) *LocateCheck {
	return &LocateCheck{tracker: tracker}
}

func (c *LocateCheck) Type() message.Type { return message.Locate }

func (c *LocateCheck) HideCategory() message.HideCategory { return message.HideNone }

func (c *LocateCheck) Check(msg *message.Message) bool {
	return strings.Contains(msg.Stripped(), "\nYou are currently") &&
		msg.ClickAction() == models.ClickActionRunCommand
}

func (c *LocateCheck) OnReceive(ctx context.Context, msg *message.Message) error {
	if c.tracker == nil {
		return fmt.Errorf("locate check: tracker not set: %w", message.ErrUnavailable)
	}

	_, parsed := c.tracker.TryUpdate(func(s state.State) (state.State, bool) {
		return state.ParseLocate(msg.Stripped(), s)
	})
	if !parsed {
		return fmt.Errorf("locate check: unrecognised report")
	}
	metrics.IncStateUpdate("mode")
	return nil
}
