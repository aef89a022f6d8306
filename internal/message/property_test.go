package message

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"dfchat/internal/logger"
)

func TestProperty_CascadeMatchesType(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.SampledFrom(Types()).Draw(t, "type")
		debug := rapid.Bool().Draw(t, "debug")
		cancels := rapid.IntRange(1, 3).Draw(t, "cancels")

		f := newFixture()
		msg := f.message("line", debug)
		msg.resolve(typ, nil)

		for i := 0; i < cancels; i++ {
			_ = msg.Cancel(context.Background())
		}

		if f.suppressor.calls != 1 {
			t.Fatalf("suppressor called %d times", f.suppressor.calls)
		}
		wantSounds := 0
		if typ.HasSound() {
			wantSounds = 1
		}
		if f.sounds.calls != wantSounds {
			t.Fatalf("%s: %d sound suppressions, want %d", typ, f.sounds.calls, wantSounds)
		}
		if len(f.lines.requests) != 1 || f.lines.requests[0] != typ.LineCount()-1 {
			t.Fatalf("%s: hide requests %v, want [%d]", typ, f.lines.requests, typ.LineCount()-1)
		}
		if !msg.IsCancelled() {
			t.Fatal("message not cancelled")
		}
	})
}

func TestProperty_FirstMatchingCheckWins(t *testing.T) {
	candidates := Types()[1:]

	rapid.Check(t, func(t *rapid.T) {
		order := rapid.Permutation(candidates).Draw(t, "order")
		matching := make(map[Type]bool, len(order))
		for _, typ := range order {
			matching[typ] = rapid.Bool().Draw(t, fmt.Sprintf("match_%s", typ))
		}

		checks := make([]Check, len(order))
		for i, typ := range order {
			typ := typ
			checks[i] = Rule{For: typ, Match: func(*Message) bool { return matching[typ] }}
		}
		c, err := NewClassifier(logger.NopLogger(), checks...)
		if err != nil {
			t.Fatal(err)
		}

		want := Other
		for _, typ := range order {
			if matching[typ] {
				want = typ
				break
			}
		}

		got, _ := c.Classify(context.Background(), newFixture().message("x", false))
		if got != want {
			t.Fatalf("classified as %s, want %s", got, want)
		}
	})
}
