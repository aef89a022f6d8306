package state

import (
	"strings"
	"sync"
	"time"
)

// Scoreboard exposes the sidebar lines the server currently shows.
type Scoreboard interface {
	TrackedPlayers() []string
}

const (
	nodeLinePrefix = "§aNode "
	betaNodeMarker = "Beta§8"
)

// Tracker owns the process-wide game state. Checks receive it by reference
// and mutate it only through its methods.
type Tracker struct {
	mu         sync.RWMutex
	state      State
	version    uint64
	scoreboard Scoreboard
	now        func() time.Time
}

func NewTracker(initial State) *Tracker {
	if initial.Mode == "" {
		initial.Mode = ModeUnknown
	}
	return &Tracker{state: initial, now: time.Now}
}

func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Version increases with every change and lets persisters skip unchanged
// snapshots.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Update applies fn to a copy of the state and stores the result.
func (t *Tracker) Update(fn func(State) State) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := fn(t.state)
	next.UpdatedAt = t.now().UTC()
	t.state = next
	t.version++
	return next
}

// TryUpdate is Update for changes that may not apply. When fn reports false
// the state, its timestamp and the version are left untouched.
func (t *Tracker) TryUpdate(fn func(State) (State, bool)) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, ok := fn(t.state)
	if !ok {
		return t.state, false
	}
	next.UpdatedAt = t.now().UTC()
	t.state = next
	t.version++
	return next, true
}

// Restore replaces the state with a persisted snapshot, without bumping the
// version so the snapshot is not written straight back.
func (t *Tracker) Restore(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Mode == "" {
		s.Mode = ModeUnknown
	}
	t.state = s
}

func (t *Tracker) SetScoreboard(sb Scoreboard) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scoreboard = sb
}

func (t *Tracker) Scoreboard() Scoreboard {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scoreboard
}

func (t *Tracker) SetMode(mode Mode) State {
	return t.Update(func(s State) State {
		s.Mode = mode
		if !s.InPlot() {
			s.PlotID, s.PlotName, s.PlotOwner = 0, "", ""
		}
		return s
	})
}

func (t *Tracker) SetLagSlayer(enabled bool) State {
	return t.Update(func(s State) State {
		s.LagSlayerEnabled = enabled
		return s
	})
}

func (t *Tracker) SetInBeta(inBeta bool) State {
	return t.Update(func(s State) State {
		s.InBeta = inBeta
		return s
	})
}

// DetectBeta scans scoreboard lines for the "§aNode Beta§8" entry. The raw
// lines keep their formatting codes.
func DetectBeta(lines []string) bool {
	for _, line := range lines {
		if !strings.HasPrefix(line, nodeLinePrefix) {
			continue
		}
		fields := strings.Split(line, " ")
		if len(fields) > 1 && fields[1] == betaNodeMarker {
			return true
		}
	}
	return false
}

// StaticScoreboard is a Scoreboard fed from the most recent sidebar update
// the proxy published.
type StaticScoreboard struct {
	mu    sync.RWMutex
	lines []string
}

func (s *StaticScoreboard) Set(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]string(nil), lines...)
}

func (s *StaticScoreboard) TrackedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lines...)
}
