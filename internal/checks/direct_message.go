package checks

import (
	"context"
	"regexp"
	"strings"

	"dfchat/internal/message"
)

var directMessagePattern = regexp.MustCompile(`^\[(\w{1,16}) → You\] (.+)$`)

type DirectMessageCheck struct{}

func (DirectMessageCheck) Type() message.Type { return message.DirectMessage }

func (DirectMessageCheck) HideCategory() message.HideCategory { return message.HideDirectMessages }

func (DirectMessageCheck) Check(msg *message.Message) bool {
	return directMessagePattern.MatchString(msg.Stripped())
}

func (DirectMessageCheck) OnReceive(context.Context, *message.Message) error { return nil }

// DirectMessageSender extracts the sender name from a private message.
func DirectMessageSender(stripped string) (string, bool) {
	m := directMessagePattern.FindStringSubmatch(stripped)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UsernameMatches reports whether msg is a private message from username.
// Minecraft names are case-insensitive.
func UsernameMatches(msg *message.Message, username string) bool {
	sender, ok := DirectMessageSender(msg.Stripped())
	return ok && strings.EqualFold(sender, username)
}
