package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfchat/internal/checks"
	"dfchat/internal/finalizers"
	"dfchat/internal/grabber"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/sound"
	"dfchat/internal/state"
	"dfchat/internal/streamer"
	"dfchat/pkg/models"
)

const supportQuestion = "» Support Question: (Click to answer)\nAsked by Notch [VIP]\nHow do I use variables?"

type harness struct {
	svc     *Service
	tracker *state.Tracker
	lines   *grabber.Grabber
	sounds  *sound.Gate
	policy  *streamer.Policy
}

func newHarness(t *testing.T, settings streamer.Settings) *harness {
	t.Helper()

	tracker := state.NewTracker(state.Initial())
	classifier, err := message.NewClassifier(logger.NopLogger(), checks.Default(tracker)...)
	require.NoError(t, err)

	policy := streamer.NewPolicy(settings)
	chain := message.NewChain(logger.NopLogger(), finalizers.NewStreamerMode(policy))
	lines := grabber.New()
	sounds := sound.NewGate()

	return &harness{
		svc:     NewService(classifier, chain, lines, sounds, nil, false, logger.NopLogger()),
		tracker: tracker,
		lines:   lines,
		sounds:  sounds,
		policy:  policy,
	}
}

func (h *harness) chat(t *testing.T, text string) (Result, int) {
	t.Helper()
	calls := 0
	event := models.NewChatEventBuilder().WithText(text).Build()
	res := h.svc.Process(context.Background(), event, message.SuppressorFunc(func() { calls++ }))
	return res, calls
}

func (h *harness) sound(t *testing.T, name string) (Result, int) {
	t.Helper()
	calls := 0
	event := models.NewChatEventBuilder().WithSound(name, 1, 1).Build()
	res := h.svc.Process(context.Background(), event, message.SuppressorFunc(func() { calls++ }))
	return res, calls
}

func TestProcess_SidebarEventFeedsBetaDetection(t *testing.T) {
	h := newHarness(t, streamer.Settings{})
	sb := &state.StaticScoreboard{}
	h.tracker.SetScoreboard(sb)
	h.svc.WithSidebar(sb)

	calls := 0
	event := models.NewChatEventBuilder().WithSidebar("§aNode Beta§8 (3)", "§fPlayers: 12").Build()
	res := h.svc.Process(context.Background(), event, message.SuppressorFunc(func() { calls++ }))

	assert.True(t, res.SidebarUpdated)
	assert.False(t, res.Suppressed)
	assert.Zero(t, calls)
	assert.Equal(t, []string{"§aNode Beta§8 (3)", "§fPlayers: 12"}, sb.TrackedPlayers())

	res, _ = h.chat(t, "◆ Welcome back to DiamondFire! ◆")
	assert.Equal(t, message.JoinDF, res.Type)
	assert.True(t, h.tracker.Snapshot().InBeta)

	cleared := models.NewChatEventBuilder().WithSidebar().Build()
	h.svc.Process(context.Background(), cleared, nil)
	h.chat(t, "◆ Welcome back to DiamondFire! ◆")
	assert.False(t, h.tracker.Snapshot().InBeta)
}

func TestProcess_SidebarEventWithoutSinkPassesThrough(t *testing.T) {
	h := newHarness(t, streamer.Settings{})

	event := models.NewChatEventBuilder().WithSidebar("§aNode Beta§8 (3)").Build()
	res := h.svc.Process(context.Background(), event, nil)

	assert.False(t, res.SidebarUpdated)
	assert.False(t, res.Suppressed)
}

func TestProcess_JoinNoticeDetectsBeta(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HideDirectMessages: true, HideSupport: true})
	sb := &state.StaticScoreboard{}
	sb.Set([]string{"§aNode Beta§8 (3)"})
	h.tracker.SetScoreboard(sb)

	res, calls := h.chat(t, "◆ Welcome back to DiamondFire! ◆")

	assert.Equal(t, message.JoinDF, res.Type)
	assert.False(t, res.Cancelled)
	assert.Zero(t, calls)
	snap := h.tracker.Snapshot()
	assert.True(t, snap.InBeta)
	assert.Equal(t, state.ModeSpawn, snap.Mode)
}

func TestProcess_LagSlayerStopClearsFlag(t *testing.T) {
	h := newHarness(t, streamer.Settings{})
	h.tracker.SetLagSlayer(true)

	res, _ := h.chat(t, "[LagSlayer] Stopped monitoring plot foo.")

	assert.Equal(t, message.LagSlayerStop, res.Type)
	assert.False(t, h.tracker.Snapshot().LagSlayerEnabled)
}

func TestProcess_DirectMessages(t *testing.T) {
	h := newHarness(t, streamer.Settings{
		Enabled:            true,
		HideDirectMessages: true,
		Exemptions:         []string{"RyanLand", "Vattendroppen236", "Reasonless"},
	})

	res, calls := h.chat(t, "[RyanLand → You] ping")
	assert.Equal(t, message.DirectMessage, res.Type)
	assert.False(t, res.Cancelled)
	assert.False(t, res.Suppressed)
	assert.Zero(t, calls)

	res, calls = h.chat(t, "[SomeoneElse → You] ping")
	assert.True(t, res.Cancelled)
	assert.True(t, res.Suppressed)
	assert.Equal(t, 1, calls)
	assert.Zero(t, h.sounds.Pending())
	assert.Zero(t, h.lines.Hidden())
}

func TestProcess_SupportQuestionHidden(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HideSupport: true})

	res, calls := h.chat(t, supportQuestion)

	assert.Equal(t, message.SupportQuestion, res.Type)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, calls)
	assert.Zero(t, h.lines.Hidden(), "single-line group hides nothing after it")
	assert.Equal(t, 1, h.sounds.Pending())

	res, calls = h.sound(t, "block.note_block.pling")
	assert.True(t, res.SoundMuted)
	assert.Equal(t, 1, calls)

	res, calls = h.sound(t, "block.note_block.pling")
	assert.False(t, res.SoundMuted)
	assert.Zero(t, calls)
}

func TestProcess_PlotAdHidesFollowingLines(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HidePlotAds: true})

	res, _ := h.chat(t, "[Plot Ad] Parkour Palace: new levels!")
	require.True(t, res.Cancelled)
	assert.Equal(t, 2, h.lines.Hidden())

	for i := 0; i < 2; i++ {
		res, calls := h.chat(t, "   /plot 1234")
		assert.True(t, res.HiddenByGroup)
		assert.Equal(t, message.Other, res.Type)
		assert.Equal(t, 1, calls)
	}

	res, calls := h.chat(t, "<Notch> hello")
	assert.False(t, res.HiddenByGroup)
	assert.Zero(t, calls)
}

func TestProcess_RecordsClassification(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HidePlotBoosts: true})

	event := models.NewChatEventBuilder().WithText("» jeb_ boosted their plot: Arena [1234]").Build()
	h.svc.Process(context.Background(), event, nil)

	require.NotNil(t, event.Metadata.Classification)
	assert.Equal(t, "PLOT_BOOST", event.Metadata.Classification.Type)
	assert.True(t, event.Metadata.Classification.Cancelled)
}

type recordingDiagnostics struct{ texts []string }

func (d *recordingDiagnostics) Cancelled(_ context.Context, msg *message.Message) {
	d.texts = append(d.texts, msg.Stripped())
}

func TestProcess_DebugModeReportsCancellations(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HidePlotAds: true})
	diag := &recordingDiagnostics{}
	h.svc.diagnostics = diag

	h.chat(t, "[Plot Ad] one")
	assert.Empty(t, diag.texts)

	h.svc.SetDebugMode(true)
	assert.True(t, h.svc.DebugMode())
	for h.lines.Hidden() > 0 {
		h.chat(t, "filler")
	}

	h.chat(t, "[Plot Ad] two")
	assert.Equal(t, []string{"[Plot Ad] two"}, diag.texts)
}
