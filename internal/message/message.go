package message

import (
	"context"

	"dfchat/pkg/models"
)

// Message is the per-event record built for one incoming chat line. It is
// owned by the goroutine processing that event and is not safe for
// concurrent use.
type Message struct {
	event      *models.ChatEvent
	stripped   string
	typ        Type
	check      Check
	resolved   bool
	cancelled  bool
	suppressor Suppressor
	cascade    Cascade
}

func New(event *models.ChatEvent, suppressor Suppressor, cascade Cascade) *Message {
	return &Message{
		event:      event,
		stripped:   event.Stripped(),
		suppressor: suppressor,
		cascade:    cascade,
	}
}

func (m *Message) Event() *models.ChatEvent { return m.event }

// Stripped is the plain text of the event with formatting removed.
func (m *Message) Stripped() string { return m.stripped }

// ClickAction returns the action of the root click event, or "" if none.
func (m *Message) ClickAction() models.ClickAction {
	if ce := m.event.ClickEvent(); ce != nil {
		return ce.Action
	}
	return ""
}

// Type is Other until classification completes.
func (m *Message) Type() Type { return m.typ }

// Check is the check that classified the message, or nil.
func (m *Message) Check() Check { return m.check }

func (m *Message) TypeIs(t Type) bool { return m.typ == t }

func (m *Message) Resolved() bool { return m.resolved }

func (m *Message) IsCancelled() bool { return m.cancelled }

func (m *Message) resolve(t Type, c Check) {
	m.typ = t
	m.check = c
	m.resolved = true
}

// Cancel suppresses the message and everything that belongs to it: the
// notification sound of its type and the LineCount()-1 lines that follow.
// Cancellation cannot be undone; a second call returns ErrAlreadyCancelled
// and fires nothing.
func (m *Message) Cancel(ctx context.Context) error {
	if m.cancelled {
		return ErrAlreadyCancelled
	}
	m.cancelled = true

	if m.suppressor != nil {
		m.suppressor.Suppress()
	}

	if m.typ.HasSound() && m.cascade.Sounds != nil {
		m.cascade.Sounds.CancelNextSound()
	}

	if m.cascade.Lines != nil {
		m.cascade.Lines.Hide(m.typ.LineCount() - 1)
	}

	if m.cascade.DebugMode && m.cascade.Diagnostics != nil {
		m.cascade.Diagnostics.Cancelled(ctx, m)
	}

	return nil
}
