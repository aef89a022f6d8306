package message

import "context"

// Suppressor stops the default downstream handling of one event.
type Suppressor interface {
	Suppress()
}

type SuppressorFunc func()

func (f SuppressorFunc) Suppress() { f() }

// LineHider hides the next n raw lines regardless of how they classify.
type LineHider interface {
	Hide(n int)
}

// SoundSuppressor drops the next notification sound.
type SoundSuppressor interface {
	CancelNextSound()
}

type Diagnostics interface {
	Cancelled(ctx context.Context, msg *Message)
}

// Cascade holds the collaborators a cancellation fans out to. Nil members
// are skipped.
type Cascade struct {
	Lines       LineHider
	Sounds      SoundSuppressor
	Diagnostics Diagnostics
	DebugMode   bool
}
