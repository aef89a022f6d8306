package grabber

import (
	"sync"
	"sync/atomic"

	"dfchat/pkg/metrics"
	"dfchat/pkg/models"
)

// Grabber intercepts raw chat lines before classification. It either hides
// a number of upcoming lines or collects them for a consumer.
type Grabber struct {
	hidden atomic.Int64

	mu      sync.Mutex
	pending *grab
}

type grab struct {
	want     int
	hide     bool
	lines    []*models.ChatEvent
	callback func(lines []*models.ChatEvent)
}

func New() *Grabber {
	return &Grabber{}
}

// Hide requests that the next n lines be suppressed regardless of their
// own classification. n <= 0 is a no-op. Requests accumulate.
func (g *Grabber) Hide(n int) {
	if n <= 0 {
		return
	}
	g.hidden.Add(int64(n))
}

// Hidden reports how many upcoming lines are still to be hidden.
func (g *Grabber) Hidden() int {
	return int(g.hidden.Load())
}

// Grab collects the next n lines and passes them to fn once all have
// arrived. When hide is true the collected lines are suppressed. A new grab
// replaces one still in progress.
func (g *Grabber) Grab(n int, hide bool, fn func(lines []*models.ChatEvent)) {
	if n <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &grab{want: n, hide: hide, callback: fn, lines: make([]*models.ChatEvent, 0, n)}
}

// Busy reports whether a grab is collecting lines.
func (g *Grabber) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// Supply offers one raw line. It returns true when the line must not be
// handled any further. A line hidden on behalf of a cancelled message is
// not offered to a pending grab.
func (g *Grabber) Supply(line *models.ChatEvent) bool {
	if g.consumeHidden() {
		return true
	}

	suppressed := false
	g.mu.Lock()
	p := g.pending
	var done func()
	if p != nil {
		p.lines = append(p.lines, line)
		if p.hide {
			suppressed = true
		}
		if len(p.lines) >= p.want {
			g.pending = nil
			lines := p.lines
			done = func() { p.callback(lines) }
		}
	}
	g.mu.Unlock()

	if done != nil && p.callback != nil {
		done()
	}
	return suppressed
}

func (g *Grabber) consumeHidden() bool {
	for {
		n := g.hidden.Load()
		if n <= 0 {
			return false
		}
		if g.hidden.CompareAndSwap(n, n-1) {
			metrics.AddHiddenLines(1)
			return true
		}
	}
}
