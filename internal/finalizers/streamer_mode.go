package finalizers

import (
	"context"

	"dfchat/internal/checks"
	"dfchat/internal/constants"
	"dfchat/internal/message"
	"dfchat/pkg/metrics"
)

// VisibilityPolicy is the read side of the streamer-mode settings.
type VisibilityPolicy interface {
	Hidden(cat message.HideCategory) bool
	Exemptions() []string
}

// StreamerMode cancels messages whose check belongs to a hidden category.
// Private messages from exempted senders stay visible.
type StreamerMode struct {
	policy VisibilityPolicy
}

func NewStreamerMode(policy VisibilityPolicy) *StreamerMode {
	return &StreamerMode{policy: policy}
}

func (f *StreamerMode) Name() string { return constants.SourceStreamerMode }

func (f *StreamerMode) Receive(ctx context.Context, msg *message.Message) error {
	if msg.IsCancelled() {
		return nil
	}

	chk := msg.Check()
	if chk == nil {
		return nil
	}

	cat := chk.HideCategory()
	if cat == message.HideNone || !f.policy.Hidden(cat) {
		return nil
	}

	if f.exempt(msg) {
		return nil
	}

	metrics.IncCancellation(msg.Type().String(), constants.SourceStreamerMode)
	return msg.Cancel(ctx)
}

// exempt only applies to private messages; no other type carries a sender.
func (f *StreamerMode) exempt(msg *message.Message) bool {
	if !msg.TypeIs(message.DirectMessage) {
		return false
	}
	for _, name := range f.policy.Exemptions() {
		if checks.UsernameMatches(msg, name) {
			return true
		}
	}
	return false
}
