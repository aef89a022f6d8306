package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextComponent_String(t *testing.T) {
	c := TextComponent{
		Text: "[",
		Extra: []TextComponent{
			{Text: "RyanLand", Color: "aqua"},
			{Text: " → You] ", Extra: []TextComponent{{Text: "hi"}}},
		},
	}

	assert.Equal(t, "[RyanLand → You] hi", c.String())
}

func TestStripFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no codes", in: "plain text", want: "plain text"},
		{name: "colour codes", in: "§aNode §lBeta§8", want: "Node Beta"},
		{name: "trailing prefix", in: "oops§", want: "oops"},
		{name: "unicode kept", in: "§b◆ Welcome ◆", want: "◆ Welcome ◆"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFormatting(tt.in))
		})
	}
}

func TestChatEvent_Stripped(t *testing.T) {
	event := NewChatEventBuilder().
		WithContent(TextComponent{Text: "§e◆ Welcome back", Extra: []TextComponent{{Text: " to DiamondFire! ◆"}}}).
		Build()

	assert.Equal(t, "◆ Welcome back to DiamondFire! ◆", event.Stripped())

	sound := NewChatEventBuilder().WithSound("entity.experience_orb.pickup", 1, 1).Build()
	assert.Equal(t, "", sound.Stripped())
	assert.Nil(t, sound.ClickEvent())
}

func TestChatEvent_StrippedNormalizesToNFC(t *testing.T) {
	event := NewChatEventBuilder().WithText("cafe\u0301").Build()
	assert.Equal(t, "caf\u00e9", event.Stripped())
}

func TestChatEventBuilder_Defaults(t *testing.T) {
	event := NewChatEventBuilder().WithText("hello").Build()

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, EventKindChat, event.Kind)
	require.NoError(t, ValidateChatEvent(event))
}

func TestChatEventBuilder_Sidebar(t *testing.T) {
	event := NewChatEventBuilder().WithText("ignored").WithSidebar("§aNode Beta§8 (3)").Build()

	assert.Equal(t, EventKindScoreboard, event.Kind)
	assert.Nil(t, event.Content)
	assert.Equal(t, []string{"§aNode Beta§8 (3)"}, event.Sidebar)
	require.NoError(t, ValidateChatEvent(event))

	cleared := &ChatEvent{ID: "1", Kind: EventKindScoreboard, Timestamp: time.Now()}
	require.NoError(t, ValidateChatEvent(cleared))
}

func TestValidateChatEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		event     *ChatEvent
		wantField string
	}{
		{name: "nil", event: nil, wantField: "event"},
		{name: "missing id", event: &ChatEvent{Kind: EventKindChat, Timestamp: now, Content: &TextComponent{}}, wantField: "id"},
		{name: "missing timestamp", event: &ChatEvent{ID: "1", Kind: EventKindChat, Content: &TextComponent{}}, wantField: "timestamp"},
		{name: "chat without content", event: &ChatEvent{ID: "1", Kind: EventKindChat, Timestamp: now}, wantField: "content"},
		{name: "sound without name", event: &ChatEvent{ID: "1", Kind: EventKindSound, Timestamp: now, Sound: &Sound{}}, wantField: "sound"},
		{name: "unknown kind", event: &ChatEvent{ID: "1", Kind: "title", Timestamp: now}, wantField: "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChatEvent(tt.event)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}
