package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"dfchat/internal/constants"
	"dfchat/internal/grabber"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/sound"
	"dfchat/pkg/logging"
	"dfchat/pkg/metrics"
	"dfchat/pkg/models"
	"dfchat/pkg/tracing"
)

// Result describes what happened to one event.
type Result struct {
	EventID string
	Kind    models.EventKind
	Type    message.Type
	// Cancelled is set when a finalizer cancelled the message.
	Cancelled bool
	// Suppressed is set when the event's default handling was stopped for
	// any reason.
	Suppressed bool
	// HiddenByGroup is set when the line belonged to an earlier cancelled
	// multi-line message and was never classified.
	HiddenByGroup bool
	SoundMuted    bool
	// SidebarUpdated is set for scoreboard refreshes.
	SidebarUpdated bool
}

func (r Result) outcome() string {
	switch {
	case r.SidebarUpdated:
		return constants.OutcomeSidebarUpdated
	case r.HiddenByGroup:
		return constants.OutcomeGrouped
	case r.SoundMuted:
		return constants.OutcomeSoundMuted
	case r.Cancelled:
		return constants.OutcomeCancelled
	default:
		return constants.OutcomeDelivered
	}
}

// Sidebar receives the latest scoreboard lines. state.StaticScoreboard
// satisfies it.
type Sidebar interface {
	Set(lines []string)
}

// Service runs incoming events through the line grouper, the sound gate,
// the classifier and the finalizer chain. Process must be called from a
// single goroutine; ordering of events matters.
type Service struct {
	classifier  *message.Classifier
	chain       *message.Chain
	lines       *grabber.Grabber
	sounds      *sound.Gate
	sidebar     Sidebar
	diagnostics message.Diagnostics
	debugMode   atomic.Bool
	logger      logger.Logger
}

func NewService(
	classifier *message.Classifier,
	chain *message.Chain,
	lines *grabber.Grabber,
	sounds *sound.Gate,
	diagnostics message.Diagnostics,
	debugMode bool,
	log logger.Logger,
) *Service {
	s := &Service{
		classifier:  classifier,
		chain:       chain,
		lines:       lines,
		sounds:      sounds,
		diagnostics: diagnostics,
		logger:      log,
	}
	s.debugMode.Store(debugMode)
	return s
}

// WithSidebar stores scoreboard events in sb. Without it they pass through
// untouched.
func (s *Service) WithSidebar(sb Sidebar) *Service {
	s.sidebar = sb
	return s
}

func (s *Service) SetDebugMode(enabled bool) { s.debugMode.Store(enabled) }

func (s *Service) DebugMode() bool { return s.debugMode.Load() }

// Process handles one event to completion. suppressor is invoked at most
// once, when the event must not reach its default handling.
func (s *Service) Process(ctx context.Context, event *models.ChatEvent, suppressor message.Suppressor) Result {
	start := time.Now()
	ctx = logging.WithEventID(ctx, event.ID)

	ctx, span := tracing.StartSpan(ctx, "pipeline.process",
		attribute.String("event.id", event.ID),
		attribute.String("event.kind", string(event.Kind)),
	)
	defer span.End()

	track := &onceSuppressor{inner: suppressor}
	var res Result
	switch event.Kind {
	case models.EventKindSound:
		res = s.processSound(ctx, event, track)
	case models.EventKindScoreboard:
		res = s.processSidebar(ctx, event)
	default:
		res = s.processChat(ctx, event, track)
	}
	res.EventID = event.ID
	res.Kind = event.Kind
	res.Suppressed = track.fired

	span.SetAttributes(
		attribute.String("chat.type", res.Type.String()),
		attribute.String("chat.outcome", res.outcome()),
	)
	metrics.IncChatMessage(res.Type.String(), res.outcome())
	metrics.ObserveChatProcessing(string(event.Kind), time.Since(start))
	return res
}

func (s *Service) processSound(ctx context.Context, event *models.ChatEvent, suppressor *onceSuppressor) Result {
	name := ""
	if event.Sound != nil {
		name = event.Sound.Name
	}
	if s.sounds.Allow(name) {
		return Result{}
	}

	suppressor.Suppress()
	s.logger.DebugwCtx(ctx, "Sound suppressed after cancelled message",
		"sound", name,
	)
	return Result{SoundMuted: true}
}

func (s *Service) processSidebar(ctx context.Context, event *models.ChatEvent) Result {
	if s.sidebar == nil {
		return Result{}
	}
	s.sidebar.Set(event.Sidebar)
	s.logger.DebugwCtx(ctx, "Sidebar updated", "lines", len(event.Sidebar))
	return Result{SidebarUpdated: true}
}

func (s *Service) processChat(ctx context.Context, event *models.ChatEvent, suppressor *onceSuppressor) Result {
	if s.lines.Supply(event) {
		suppressor.Suppress()
		metrics.IncCancellation(message.Other.String(), constants.SourceLineGroup)
		return Result{HiddenByGroup: true}
	}

	msg := message.New(event, suppressor, message.Cascade{
		Lines:       s.lines,
		Sounds:      s.sounds,
		Diagnostics: s.diagnostics,
		DebugMode:   s.debugMode.Load(),
	})

	classifyCtx, span := tracing.StartSpan(ctx, "pipeline.classify")
	typ, _ := s.classifier.Classify(classifyCtx, msg)
	span.SetAttributes(attribute.String("chat.type", typ.String()))
	span.End()

	finalizeCtx, span := tracing.StartSpan(ctx, "pipeline.finalize")
	s.chain.Run(finalizeCtx, msg)
	span.End()

	event.Metadata.Classification = &models.Classification{
		Type:         typ.String(),
		Cancelled:    msg.IsCancelled(),
		ClassifiedAt: time.Now().UTC(),
	}

	return Result{Type: typ, Cancelled: msg.IsCancelled()}
}

// onceSuppressor forwards the first Suppress call and remembers that it
// happened.
type onceSuppressor struct {
	inner message.Suppressor
	fired bool
}

func (s *onceSuppressor) Suppress() {
	if s.fired {
		return
	}
	s.fired = true
	if s.inner != nil {
		s.inner.Suppress()
	}
}
