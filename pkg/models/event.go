package models

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type EventKind string

const (
	EventKindChat       EventKind = "chat"
	EventKindSound      EventKind = "sound"
	EventKindScoreboard EventKind = "scoreboard"
)

type ClickAction string

const (
	ClickActionRunCommand      ClickAction = "run_command"
	ClickActionSuggestCommand  ClickAction = "suggest_command"
	ClickActionOpenURL         ClickAction = "open_url"
	ClickActionCopyToClipboard ClickAction = "copy_to_clipboard"
)

// ChatEvent is one unit delivered by the server connection: a system chat
// line, a sound cue or a sidebar refresh.
type ChatEvent struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Content   *TextComponent `json:"content,omitempty"`
	Sound     *Sound         `json:"sound,omitempty"`
	Sidebar   []string       `json:"sidebar,omitempty"`
	Metadata  Metadata       `json:"metadata"`
}

type TextComponent struct {
	Text       string          `json:"text"`
	Color      string          `json:"color,omitempty"`
	Bold       bool            `json:"bold,omitempty"`
	ClickEvent *ClickEvent     `json:"click_event,omitempty"`
	HoverText  string          `json:"hover_text,omitempty"`
	Extra      []TextComponent `json:"extra,omitempty"`
}

type ClickEvent struct {
	Action ClickAction `json:"action"`
	Value  string      `json:"value"`
}

type Sound struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Pitch  float64 `json:"pitch"`
}

type Metadata struct {
	TraceID        string          `json:"trace_id,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
}

type Classification struct {
	Type         string    `json:"type"`
	Cancelled    bool      `json:"cancelled"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// String flattens the component tree into its plain text, depth first.
func (c TextComponent) String() string {
	var b strings.Builder
	c.writeTo(&b)
	return b.String()
}

func (c TextComponent) writeTo(b *strings.Builder) {
	b.WriteString(c.Text)
	for _, child := range c.Extra {
		child.writeTo(b)
	}
}

// Stripped returns the plain text content with legacy formatting codes
// removed and the result in Unicode NFC form. Sound events have no text.
func (e *ChatEvent) Stripped() string {
	if e.Content == nil {
		return ""
	}
	return norm.NFC.String(StripFormatting(e.Content.String()))
}

// ClickEvent returns the click event attached to the root component, if any.
func (e *ChatEvent) ClickEvent() *ClickEvent {
	if e.Content == nil {
		return nil
	}
	return e.Content.ClickEvent
}

const formattingPrefix = '§'

// StripFormatting removes "§x" legacy colour and style codes.
func StripFormatting(s string) string {
	if !strings.ContainsRune(s, formattingPrefix) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	skip := false
	for _, r := range s {
		if skip {
			skip = false
			continue
		}
		if r == formattingPrefix {
			skip = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
