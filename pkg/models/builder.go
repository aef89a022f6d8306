package models

import (
	"time"

	"github.com/google/uuid"
)

type ChatEventBuilder struct {
	event *ChatEvent
}

func NewChatEventBuilder() *ChatEventBuilder {
	return &ChatEventBuilder{
		event: &ChatEvent{
			Kind:     EventKindChat,
			Metadata: Metadata{},
		},
	}
}

func (b *ChatEventBuilder) WithID(id string) *ChatEventBuilder {
	b.event.ID = id
	return b
}

func (b *ChatEventBuilder) WithSource(source string) *ChatEventBuilder {
	b.event.Source = source
	return b
}

func (b *ChatEventBuilder) WithTimestamp(timestamp time.Time) *ChatEventBuilder {
	b.event.Timestamp = timestamp
	return b
}

func (b *ChatEventBuilder) WithText(text string) *ChatEventBuilder {
	b.event.Kind = EventKindChat
	b.event.Content = &TextComponent{Text: text}
	return b
}

func (b *ChatEventBuilder) WithContent(content TextComponent) *ChatEventBuilder {
	b.event.Kind = EventKindChat
	b.event.Content = &content
	return b
}

func (b *ChatEventBuilder) WithClickEvent(action ClickAction, value string) *ChatEventBuilder {
	if b.event.Content == nil {
		b.event.Content = &TextComponent{}
	}
	b.event.Content.ClickEvent = &ClickEvent{Action: action, Value: value}
	return b
}

func (b *ChatEventBuilder) WithSound(name string, volume, pitch float64) *ChatEventBuilder {
	b.event.Kind = EventKindSound
	b.event.Content = nil
	b.event.Sound = &Sound{Name: name, Volume: volume, Pitch: pitch}
	return b
}

// WithSidebar turns the event into a scoreboard refresh. Lines keep their
// formatting codes.
func (b *ChatEventBuilder) WithSidebar(lines ...string) *ChatEventBuilder {
	b.event.Kind = EventKindScoreboard
	b.event.Content = nil
	b.event.Sound = nil
	b.event.Sidebar = append([]string{}, lines...)
	return b
}

func (b *ChatEventBuilder) WithTraceID(traceID string) *ChatEventBuilder {
	b.event.Metadata.TraceID = traceID
	return b
}

func (b *ChatEventBuilder) Build() *ChatEvent {
	if b.event.ID == "" {
		b.event.ID = uuid.New().String()
	}
	if b.event.Timestamp.IsZero() {
		b.event.Timestamp = time.Now()
	}
	return b.event
}
