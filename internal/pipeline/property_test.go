package pipeline

import (
	"testing"

	"pgregory.net/rapid"

	"dfchat/internal/message"
	"dfchat/internal/streamer"
)

type sample struct {
	text string
	typ  message.Type
}

var samples = []sample{
	{text: "[Notch → You] hi", typ: message.DirectMessage},
	{text: supportQuestion, typ: message.SupportQuestion},
	{text: "» Notch has entered the support queue. (3 in queue)", typ: message.SupportQueue},
	{text: "[Plot Ad] Parkour Palace: new levels!", typ: message.PlotAd},
	{text: "» jeb_ boosted their plot: Arena [1234]", typ: message.PlotBoost},
	{text: "[LagSlayer] Stopped monitoring plot foo.", typ: message.LagSlayerStop},
	{text: "<Notch> hello", typ: message.Other},
}

// step is either a chat line (sample index) or a sound cue (-1).
func drawSteps(t *rapid.T) []int {
	return rapid.SliceOfN(rapid.IntRange(-1, len(samples)-1), 1, 40).Draw(t, "steps")
}

func categoryHidden(typ message.Type, s streamer.Settings) bool {
	switch typ {
	case message.DirectMessage:
		return s.HideDirectMessages
	case message.SupportQuestion, message.SupportQueue:
		return s.HideSupport
	case message.PlotAd:
		return s.HidePlotAds
	case message.PlotBoost:
		return s.HidePlotBoosts
	}
	return false
}

// The service must agree with a simple model: cancelled messages hide
// LineCount()-1 following lines and mute one later sound if their type
// carries one.
func TestProperty_ProcessMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		settings := streamer.Settings{
			Enabled:            true,
			HideDirectMessages: rapid.Bool().Draw(rt, "dm"),
			HideSupport:        rapid.Bool().Draw(rt, "support"),
			HidePlotAds:        rapid.Bool().Draw(rt, "ads"),
			HidePlotBoosts:     rapid.Bool().Draw(rt, "boosts"),
		}
		h := newHarness(t, settings)

		hidden, tokens := 0, 0
		for i, step := range drawSteps(rt) {
			if step < 0 {
				res, calls := h.sound(t, "entity.experience_orb.pickup")
				wantMuted := tokens > 0
				if wantMuted {
					tokens--
				}
				if res.SoundMuted != wantMuted || res.Suppressed != wantMuted || (calls == 1) != wantMuted {
					rt.Fatalf("step %d sound: muted=%v suppressed=%v calls=%d, want muted=%v", i, res.SoundMuted, res.Suppressed, calls, wantMuted)
				}
				continue
			}

			smp := samples[step]
			res, calls := h.chat(t, smp.text)
			if calls > 1 {
				rt.Fatalf("step %d: suppressor called %d times", i, calls)
			}

			if hidden > 0 {
				hidden--
				if !res.HiddenByGroup || calls != 1 {
					rt.Fatalf("step %d %q: want hidden by group, got %+v", i, smp.text, res)
				}
				continue
			}

			if res.Type != smp.typ {
				rt.Fatalf("step %d %q: type %s, want %s", i, smp.text, res.Type, smp.typ)
			}

			wantCancel := categoryHidden(smp.typ, settings)
			if res.Cancelled != wantCancel || (calls == 1) != wantCancel {
				rt.Fatalf("step %d %q: cancelled=%v calls=%d, want %v", i, smp.text, res.Cancelled, calls, wantCancel)
			}
			if wantCancel {
				hidden += smp.typ.LineCount() - 1
				if smp.typ.HasSound() {
					tokens++
				}
			}
		}

		if h.lines.Hidden() != hidden {
			rt.Fatalf("grabber has %d hidden lines pending, model has %d", h.lines.Hidden(), hidden)
		}
		if h.sounds.Pending() != tokens {
			rt.Fatalf("gate has %d tokens, model has %d", h.sounds.Pending(), tokens)
		}
	})
}
