package message

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dfchat/internal/logger"
)

type funcFinalizer struct {
	name    string
	receive func(ctx context.Context, msg *Message) error
}

func (f funcFinalizer) Name() string { return f.name }

func (f funcFinalizer) Receive(ctx context.Context, msg *Message) error {
	return f.receive(ctx, msg)
}

func TestChain_RunsInOrderAfterCancel(t *testing.T) {
	var order []string
	var sawCancelled bool

	chain := NewChain(logger.NopLogger(),
		funcFinalizer{name: "first", receive: func(ctx context.Context, msg *Message) error {
			order = append(order, "first")
			return msg.Cancel(ctx)
		}},
		funcFinalizer{name: "second", receive: func(ctx context.Context, msg *Message) error {
			order = append(order, "second")
			sawCancelled = msg.IsCancelled()
			return msg.Cancel(ctx)
		}},
	)

	f := newFixture()
	msg := f.message("hi", false)
	msg.resolve(PlotAd, nil)
	chain.Run(context.Background(), msg)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []string{"first", "second"}, chain.Names())
	assert.True(t, sawCancelled)
	assert.True(t, msg.IsCancelled())
	assert.Equal(t, 1, f.suppressor.calls)
	assert.Equal(t, []int{2}, f.lines.requests)
}

func TestChain_ErrorsDoNotStopChain(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reached := false

	chain := NewChain(logger.NewWithCore(core),
		funcFinalizer{name: "failing", receive: func(context.Context, *Message) error {
			return errors.New("policy store down")
		}},
		funcFinalizer{name: "panicking", receive: func(context.Context, *Message) error {
			panic("nil policy")
		}},
		funcFinalizer{name: "last", receive: func(context.Context, *Message) error {
			reached = true
			return nil
		}},
	)

	chain.Run(context.Background(), newFixture().message("hi", false))

	require.True(t, reached)
	failures := logs.FilterMessage("Finalizer failed").All()
	require.Len(t, failures, 2)
	assert.Equal(t, "failing", failures[0].ContextMap()["finalizer"])
	assert.Equal(t, "panicking", failures[1].ContextMap()["finalizer"])
}
