package diagnostics

import (
	"context"
	"time"

	"dfchat/internal/logger"
	"dfchat/internal/message"
)

// Record is one cancelled message as kept in the archive.
type Record struct {
	EventID     string    `json:"event_id" bson:"event_id"`
	Type        string    `json:"type" bson:"type"`
	Text        string    `json:"text" bson:"text"`
	Source      string    `json:"source" bson:"source"`
	CancelledAt time.Time `json:"cancelled_at" bson:"cancelled_at"`
}

// Archive stores cancelled messages for later inspection.
type Archive interface {
	Store(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// Emitter reports cancelled messages while debug mode is on. It writes a
// log line for every cancellation and, when an archive is configured, a
// record there too.
type Emitter struct {
	logger  logger.Logger
	archive Archive
	now     func() time.Time
}

func NewEmitter(log logger.Logger, archive Archive) *Emitter {
	return &Emitter{
		logger:  log,
		archive: archive,
		now:     time.Now,
	}
}

func (e *Emitter) Cancelled(ctx context.Context, msg *message.Message) {
	e.logger.InfowCtx(ctx, "[CANCELLED] "+msg.Stripped(),
		"type", msg.Type().String(),
		"event_id", msg.Event().ID,
	)

	if e.archive == nil {
		return
	}

	rec := Record{
		EventID:     msg.Event().ID,
		Type:        msg.Type().String(),
		Text:        msg.Stripped(),
		Source:      msg.Event().Source,
		CancelledAt: e.now().UTC(),
	}
	if err := e.archive.Store(ctx, rec); err != nil {
		e.logger.WarnwCtx(ctx, "Failed to archive cancelled message",
			"event_id", rec.EventID,
			"error", err,
		)
	}
}

// Archive returns the configured archive, or nil.
func (e *Emitter) Archive() Archive { return e.archive }
