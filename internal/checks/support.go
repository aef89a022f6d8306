package checks

import (
	"context"
	"regexp"

	"dfchat/internal/message"
)

var (
	supportQuestionPattern = regexp.MustCompile(`^.*» Support Question: \(Click to answer\)\nAsked by \w+ \[[a-zA-Z]+]\n.+$`)
	supportQueuePattern    = regexp.MustCompile(`^.*» \w+ has entered the support queue\.(?: \(\d+ in queue\))?$`)
)

type SupportQuestionCheck struct{}

func (SupportQuestionCheck) Type() message.Type { return message.SupportQuestion }

func (SupportQuestionCheck) HideCategory() message.HideCategory { return message.HideSupport }

func (SupportQuestionCheck) Check(msg *message.Message) bool {
	return supportQuestionPattern.MatchString(msg.Stripped())
}

func (SupportQuestionCheck) OnReceive(context.Context, *message.Message) error { return nil }

// SupportQueueCheck matches the queue notice. The server follows it with a
// separate line holding the reason.
type SupportQueueCheck struct{}

func (SupportQueueCheck) Type() message.Type { return message.SupportQueue }

func (SupportQueueCheck) HideCategory() message.HideCategory { return message.HideSupport }

func (SupportQueueCheck) Check(msg *message.Message) bool {
	return supportQueuePattern.MatchString(msg.Stripped())
}

func (SupportQueueCheck) OnReceive(context.Context, *message.Message) error { return nil }
