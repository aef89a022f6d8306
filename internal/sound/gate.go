package sound

import (
	"sync/atomic"

	"dfchat/pkg/metrics"
)

// Gate drops notification sounds that belong to cancelled messages. Each
// CancelNextSound queues one token; the next sound consumes it.
type Gate struct {
	pending atomic.Int64
}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) CancelNextSound() {
	g.pending.Add(1)
}

// Allow reports whether the sound may play, consuming a token if one is
// queued.
func (g *Gate) Allow(name string) bool {
	for {
		n := g.pending.Load()
		if n <= 0 {
			return true
		}
		if g.pending.CompareAndSwap(n, n-1) {
			metrics.IncSuppressedSound()
			return false
		}
	}
}

func (g *Gate) Pending() int {
	return int(g.pending.Load())
}

// Reset drops every queued token.
func (g *Gate) Reset() {
	g.pending.Store(0)
}
