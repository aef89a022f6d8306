// Package checks holds the classification rules for DiamondFire server
// messages.
package checks

import (
	"regexp"

	"dfchat/internal/message"
	"dfchat/internal/state"
)

// Default returns the production checks in classification order. The order
// matters: SupportQuestion must run before DirectMessage, since a relayed
// support question can also look like a private message.
func Default(tracker *state.Tracker) []message.Check {
	return []message.Check{
		NewJoinDF(tracker),
		NewLocate(tracker),
		NewLagSlayerStart(tracker),
		NewLagSlayerStop(tracker),
		SupportQuestionCheck{},
		SupportQueueCheck{},
		DirectMessageCheck{},
		PlotAdCheck{},
		PlotBoostCheck{},
	}
}

// patternCheck is the base of checks that only match a regular expression
// over the stripped text.
type patternCheck struct {
	pattern *regexp.Regexp
}

func (c patternCheck) Check(msg *message.Message) bool {
	return c.pattern.MatchString(msg.Stripped())
}
