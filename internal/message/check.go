package message

import "context"

// Check classifies one shape of server message. Check must be free of side
// effects; OnReceive runs once when the check wins classification.
type Check interface {
	Type() Type
	Check(msg *Message) bool
	OnReceive(ctx context.Context, msg *Message) error
	// HideCategory is the streamer-mode category gating this check, or
	// HideNone.
	HideCategory() HideCategory
}

// Rule is a Check assembled from functions. A nil Action does nothing.
type Rule struct {
	For      Type
	Match    func(msg *Message) bool
	Action   func(ctx context.Context, msg *Message) error
	Category HideCategory
}

func (r Rule) Type() Type { return r.For }

func (r Rule) Check(msg *Message) bool { return r.Match(msg) }

func (r Rule) OnReceive(ctx context.Context, msg *Message) error {
	if r.Action == nil {
		return nil
	}
	return r.Action(ctx, msg)
}

func (r Rule) HideCategory() HideCategory { return r.Category }
