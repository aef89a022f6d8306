package message

import (
	"context"

	"dfchat/pkg/models"
)

type countingSuppressor struct{ calls int }

func (s *countingSuppressor) Suppress() { s.calls++ }

type recordingHider struct{ requests []int }

func (h *recordingHider) Hide(n int) { h.requests = append(h.requests, n) }

type countingSounds struct{ calls int }

func (s *countingSounds) CancelNextSound() { s.calls++ }

type recordingDiagnostics struct{ texts []string }

func (d *recordingDiagnostics) Cancelled(_ context.Context, msg *Message) {
	d.texts = append(d.texts, msg.Stripped())
}

type fixture struct {
	suppressor *countingSuppressor
	lines      *recordingHider
	sounds     *countingSounds
	diag       *recordingDiagnostics
}

func newFixture() *fixture {
	return &fixture{
		suppressor: &countingSuppressor{},
		lines:      &recordingHider{},
		sounds:     &countingSounds{},
		diag:       &recordingDiagnostics{},
	}
}

func (f *fixture) message(text string, debug bool) *Message {
	event := models.NewChatEventBuilder().WithText(text).Build()
	return New(event, f.suppressor, Cascade{
		Lines:       f.lines,
		Sounds:      f.sounds,
		Diagnostics: f.diag,
		DebugMode:   debug,
	})
}

func textRule(t Type, text string) Rule {
	return Rule{
		For:   t,
		Match: func(msg *Message) bool { return msg.Stripped() == text },
	}
}
