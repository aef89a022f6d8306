package checks

import (
	"context"
	"fmt"

	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/pkg/metrics"
)

const joinNotice = "◆ Welcome back to DiamondFire! ◆"

// JoinDFCheck recognises the greeting sent when the player lands on the
// network and refreshes the beta flag from the scoreboard.
type JoinDFCheck struct {
	tracker *state.Tracker
}

func NewJoinDF(tracker *state.Tracker) *JoinDFCheck {
	return &JoinDFCheck{tracker: tracker}
}

func (c *JoinDFCheck) Type() message.Type { return message.JoinDF }

func (c *JoinDFCheck) HideCategory() message.HideCategory { return message.HideNone }

// Check only accepts the greeting while the player is at spawn or the mode
// is not known yet, so a player echoing it on a plot is not misread.
func (c *JoinDFCheck) Check(msg *message.Message) bool {
	if msg.Stripped() != joinNotice {
		return false
	}
	if c.tracker == nil {
		return true
	}
	mode := c.tracker.Snapshot().Mode
	return mode == state.ModeSpawn || mode == state.ModeUnknown
}

func (c *JoinDFCheck) OnReceive(ctx context.Context, msg *message.Message) error {
	if c.tracker == nil {
		return fmt.Errorf("join check: tracker not set: %w", message.ErrUnavailable)
	}

	sb := c.tracker.Scoreboard()
	inBeta := sb != nil && state.DetectBeta(sb.TrackedPlayers())

	c.tracker.Update(func(s state.State) state.State {
		s.Mode = state.ModeSpawn
		s.PlotID, s.PlotName, s.PlotOwner = 0, "", ""
		s.InBeta = inBeta
		return s
	})
	metrics.IncStateUpdate("in_beta")

	if sb == nil {
		return fmt.Errorf("join check: scoreboard not available: %w", message.ErrUnavailable)
	}
	return nil
}
