package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dfchat/pkg/logging"
)

func TestNew(t *testing.T) {
	log, err := New("debug", "json")
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = New("info", "console")
	require.NoError(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)
	log.(*SugaredLogger).SetServiceName("chat-service")

	ctx := logging.WithEventID(context.Background(), "evt-1")
	log.InfowCtx(ctx, "classified", "type", "JOIN_DF")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "chat-service", fields["service_name"])
	assert.Equal(t, "JOIN_DF", fields["type"])
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("component", "grabber")

	log.Warnw("hidden line")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "grabber", logs.All()[0].ContextMap()["component"])
}
