package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfchat/internal/config"
	"dfchat/internal/logger"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" BUILD ")
	require.NoError(t, err)
	assert.Equal(t, ModeBuild, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeUnknown, m)

	_, err = ParseMode("flying")
	assert.Error(t, err)
}

func TestParseLocate(t *testing.T) {
	prev := State{Mode: ModeSpawn, LagSlayerEnabled: true}

	tests := []struct {
		name string
		text string
		ok   bool
		want State
	}{
		{
			name: "spawn",
			text: "                                       \nYou are currently at spawn.\n→ Server: Node 3\n",
			ok:   true,
			want: State{Mode: ModeSpawn, Node: "Node 3", LagSlayerEnabled: true},
		},
		{
			name: "playing",
			text: "\nYou are currently playing on:\n\n→ Parkour Palace [41523]\n→ Owner: Notch\n→ Server: Node 5\n",
			ok:   true,
			want: State{Mode: ModePlay, Node: "Node 5", PlotID: 41523, PlotName: "Parkour Palace", PlotOwner: "Notch", LagSlayerEnabled: true},
		},
		{
			name: "coding on beta",
			text: "\nYou are currently coding on:\n\n→ My Plot [7]\n→ Owner: jeb_\n→ Server: Node Beta\n",
			ok:   true,
			want: State{Mode: ModeDev, Node: "Node Beta", InBeta: true, PlotID: 7, PlotName: "My Plot", PlotOwner: "jeb_", LagSlayerEnabled: true},
		},
		{
			name: "other player",
			text: "\nNotch is currently playing on:\n→ Something [1]\n",
			ok:   false,
			want: prev,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLocate(tt.text, prev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectBeta(t *testing.T) {
	assert.True(t, DetectBeta([]string{"§7Players: 12", "§aNode Beta§8 (42)"}))
	assert.False(t, DetectBeta([]string{"§aNode 4§8 (42)"}))
	assert.False(t, DetectBeta([]string{"§aNode"}))
	assert.False(t, DetectBeta(nil))
}

func TestTracker_Update(t *testing.T) {
	tr := NewTracker(State{})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	assert.Equal(t, ModeUnknown, tr.Snapshot().Mode)
	assert.Zero(t, tr.Version())

	tr.Update(func(s State) State {
		s.Mode = ModePlay
		s.PlotID = 9
		return s
	})
	tr.SetLagSlayer(true)
	tr.SetInBeta(true)

	s := tr.Snapshot()
	assert.Equal(t, ModePlay, s.Mode)
	assert.Equal(t, 9, s.PlotID)
	assert.True(t, s.LagSlayerEnabled)
	assert.True(t, s.InBeta)
	assert.Equal(t, fixed, s.UpdatedAt)
	assert.Equal(t, uint64(3), tr.Version())

	tr.SetMode(ModeSpawn)
	assert.Zero(t, tr.Snapshot().PlotID)
}

func TestTracker_TryUpdate(t *testing.T) {
	tr := NewTracker(Initial())
	before := tr.Snapshot()

	got, ok := tr.TryUpdate(func(s State) (State, bool) {
		s.Mode = ModeDev
		return s, false
	})
	assert.False(t, ok)
	assert.Equal(t, before, got)
	assert.Equal(t, before, tr.Snapshot())
	assert.Zero(t, tr.Version())

	got, ok = tr.TryUpdate(func(s State) (State, bool) {
		s.Mode = ModeDev
		return s, true
	})
	assert.True(t, ok)
	assert.Equal(t, ModeDev, got.Mode)
	assert.Equal(t, uint64(1), tr.Version())
}

func TestTracker_RestoreKeepsVersion(t *testing.T) {
	tr := NewTracker(Initial())
	tr.Restore(State{Node: "Node 2"})

	assert.Equal(t, ModeUnknown, tr.Snapshot().Mode)
	assert.Equal(t, "Node 2", tr.Snapshot().Node)
	assert.Zero(t, tr.Version())
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := NewTracker(Initial())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.SetLagSlayer(true)
		}()
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), tr.Version())
}

func TestStaticScoreboard(t *testing.T) {
	sb := &StaticScoreboard{}
	lines := []string{"§aNode Beta§8 (1)"}
	sb.Set(lines)
	lines[0] = "changed"

	assert.Equal(t, []string{"§aNode Beta§8 (1)"}, sb.TrackedPlayers())

	tr := NewTracker(Initial())
	assert.Nil(t, tr.Scoreboard())
	tr.SetScoreboard(sb)
	assert.Same(t, sb, tr.Scoreboard())
}

type memoryStore struct {
	mu    sync.Mutex
	saved []State
	load  State
	err   error
}

func (m *memoryStore) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *memoryStore) Load(context.Context) (State, error) {
	if m.err != nil {
		return State{}, m.err
	}
	return m.load, nil
}

func TestPersister_FlushOnlyOnChange(t *testing.T) {
	tr := NewTracker(Initial())
	store := &memoryStore{}
	p := NewPersister(tr, store, time.Second, logger.NopLogger())

	require.NoError(t, p.Flush(context.Background()))
	assert.Empty(t, store.saved)

	tr.SetMode(ModeBuild)
	require.NoError(t, p.Flush(context.Background()))
	require.NoError(t, p.Flush(context.Background()))

	require.Len(t, store.saved, 1)
	assert.Equal(t, ModeBuild, store.saved[0].Mode)
}

func TestPersister_Restore(t *testing.T) {
	tr := NewTracker(Initial())
	store := &memoryStore{load: State{Mode: ModeDev, Node: "Node 1"}}
	p := NewPersister(tr, store, time.Second, logger.NopLogger())

	require.NoError(t, p.Restore(context.Background()))
	assert.Equal(t, ModeDev, tr.Snapshot().Mode)

	require.NoError(t, p.Flush(context.Background()))
	assert.Empty(t, store.saved)

	missing := NewPersister(NewTracker(Initial()), &memoryStore{err: ErrNoSnapshot}, time.Second, logger.NopLogger())
	assert.NoError(t, missing.Restore(context.Background()))
}

func TestPersister_RunFinalFlush(t *testing.T) {
	tr := NewTracker(Initial())
	store := &memoryStore{}
	p := NewPersister(tr, store, time.Hour, logger.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	tr.SetLagSlayer(true)
	cancel()

	require.NoError(t, <-done)
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.saved, 1)
	assert.True(t, store.saved[0].LagSlayerEnabled)
}

func TestCircuitBreakerStore(t *testing.T) {
	failing := &memoryStore{err: errors.New("connection refused")}
	s := NewCircuitBreakerStore(failing, config.CircuitBreakerConfig{
		Enabled:      true,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, s.Save(context.Background(), Initial()))
	}
	assert.Equal(t, "open", s.State())

	disabled := NewCircuitBreakerStore(&memoryStore{}, config.CircuitBreakerConfig{})
	assert.Equal(t, "disabled", disabled.State())
	assert.NoError(t, disabled.Save(context.Background(), Initial()))
}
