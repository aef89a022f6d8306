package state

import (
	"context"
	"errors"
	"time"

	"dfchat/internal/logger"
)

// Persister writes tracker snapshots to a store whenever the state changed
// since the last successful write.
type Persister struct {
	tracker  *Tracker
	store    Store
	interval time.Duration
	log      logger.Logger
	saved    uint64
}

func NewPersister(tracker *Tracker, store Store, interval time.Duration, log logger.Logger) *Persister {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Persister{tracker: tracker, store: store, interval: interval, log: log}
}

// Restore loads the stored snapshot into the tracker. A missing snapshot is
// not an error.
func (p *Persister) Restore(ctx context.Context) error {
	s, err := p.store.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}
	p.tracker.Restore(s)
	p.saved = p.tracker.Version()
	p.log.Infow("Restored state snapshot", "mode", s.Mode, "node", s.Node)
	return nil
}

// Flush writes the current snapshot if it changed.
func (p *Persister) Flush(ctx context.Context) error {
	version := p.tracker.Version()
	if version == p.saved {
		return nil
	}
	if err := p.store.Save(ctx, p.tracker.Snapshot()); err != nil {
		return err
	}
	p.saved = version
	return nil
}

// Run flushes on every tick until ctx ends, then makes a final flush.
func (p *Persister) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := p.Flush(flushCtx); err != nil {
				p.log.Warnw("Final state flush failed", "error", err)
			}
			return nil
		case <-ticker.C:
			if err := p.Flush(ctx); err != nil {
				p.log.Warnw("State flush failed", "error", err)
			}
		}
	}
}
