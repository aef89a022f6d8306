package message

import (
	"context"
	"errors"

	"dfchat/internal/logger"
	apperrors "dfchat/pkg/errors"
	"dfchat/pkg/metrics"
)

// Finalizer is a policy applied after classification. It may cancel the
// message but never un-cancel it.
type Finalizer interface {
	Name() string
	Receive(ctx context.Context, msg *Message) error
}

// Chain runs finalizers in a fixed order. A cancelled message still passes
// through the rest of the chain.
type Chain struct {
	log        logger.Logger
	finalizers []Finalizer
}

func NewChain(log logger.Logger, finalizers ...Finalizer) *Chain {
	return &Chain{
		log:        log,
		finalizers: append([]Finalizer(nil), finalizers...),
	}
}

func (c *Chain) Names() []string {
	names := make([]string, len(c.finalizers))
	for i, f := range c.finalizers {
		names[i] = f.Name()
	}
	return names
}

func (c *Chain) Run(ctx context.Context, msg *Message) {
	for _, f := range c.finalizers {
		err := apperrors.Safely(func() error {
			return f.Receive(ctx, msg)
		})
		if err == nil || errors.Is(err, ErrAlreadyCancelled) {
			continue
		}

		metrics.IncFinalizerError(f.Name())
		c.log.ErrorwCtx(ctx, "Finalizer failed",
			"finalizer", f.Name(),
			"type", msg.Type().String(),
			"error", err,
		)
	}
}
