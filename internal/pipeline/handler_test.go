package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfchat/internal/logger"
	"dfchat/internal/streamer"
	"dfchat/pkg/models"
	"dfchat/pkg/retry"
)

type published struct {
	topic, key string
	event      models.ChatEvent
}

type fakeProducer struct {
	sent     []published
	failures int
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload interface{}) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, published{topic: topic, key: key, event: payload.(models.ChatEvent)})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func encode(t *testing.T, event *models.ChatEvent) []byte {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return b
}

func newTestHandler(t *testing.T, producer *fakeProducer, forward bool) *Handler {
	t.Helper()
	h := newHarness(t, streamer.Settings{Enabled: true, HidePlotAds: true})
	handler := NewHandler(h.svc, producer, "chat.visible", forward, logger.NopLogger())
	handler.publishPolicy = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
	return handler
}

func TestHandler_ForwardsVisibleEvents(t *testing.T) {
	producer := &fakeProducer{}
	handler := newTestHandler(t, producer, false)

	event := models.NewChatEventBuilder().WithID("evt-1").WithText("<Notch> hello").Build()
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, event)))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, "chat.visible", producer.sent[0].topic)
	assert.Equal(t, "evt-1", producer.sent[0].key)
	require.NotNil(t, producer.sent[0].event.Metadata.Classification)
	assert.Equal(t, "OTHER", producer.sent[0].event.Metadata.Classification.Type)
}

func TestHandler_DropsSuppressedEvents(t *testing.T) {
	producer := &fakeProducer{}
	handler := newTestHandler(t, producer, false)

	event := models.NewChatEventBuilder().WithText("[Plot Ad] Parkour Palace").Build()
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, event)))

	assert.Empty(t, producer.sent)
}

func TestHandler_ForwardSuppressedMarksClassification(t *testing.T) {
	producer := &fakeProducer{}
	handler := newTestHandler(t, producer, true)

	event := models.NewChatEventBuilder().WithText("[Plot Ad] Parkour Palace").Build()
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, event)))

	require.Len(t, producer.sent, 1)
	assert.True(t, producer.sent[0].event.Metadata.Classification.Cancelled)
}

func TestHandler_RetriesPublish(t *testing.T) {
	producer := &fakeProducer{failures: 2}
	handler := newTestHandler(t, producer, false)

	event := models.NewChatEventBuilder().WithText("<Notch> hello").Build()
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, event)))
	assert.Len(t, producer.sent, 1)

	producer.failures = 5
	err := handler.HandleChatEvent(context.Background(), encode(t, event))
	require.Error(t, err)
	assert.True(t, retry.IsFatal(err))
}

func TestHandler_RejectsInvalidEvents(t *testing.T) {
	handler := newTestHandler(t, &fakeProducer{}, false)

	err := handler.HandleChatEvent(context.Background(), []byte(`{"id":`))
	assert.True(t, retry.IsFatal(err))

	err = handler.HandleChatEvent(context.Background(), []byte(`{"id":"x","kind":"chat","timestamp":"2024-05-01T12:00:00Z"}`))
	assert.True(t, retry.IsFatal(err))
}

type seenSet struct {
	seen map[string]bool
	err  error
}

func (s *seenSet) FirstDelivery(_ context.Context, event *models.ChatEvent) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[event.ID] {
		return false, nil
	}
	s.seen[event.ID] = true
	return true, nil
}

func TestHandler_SkipsRedeliveredEvents(t *testing.T) {
	h := newHarness(t, streamer.Settings{Enabled: true, HidePlotAds: true})
	producer := &fakeProducer{}
	handler := NewHandler(h.svc, producer, "chat.visible", false, logger.NopLogger()).
		WithDeduplicator(&seenSet{seen: make(map[string]bool)})

	ad := models.NewChatEventBuilder().WithID("ad-1").WithText("[Plot Ad] Parkour Palace").Build()
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, ad)))
	assert.Equal(t, 2, h.lines.Hidden())

	// A replay must not hide two more lines.
	require.NoError(t, handler.HandleChatEvent(context.Background(), encode(t, ad)))
	assert.Equal(t, 2, h.lines.Hidden())
	assert.Empty(t, producer.sent)
}

func TestHandler_DedupErrorIsRetryable(t *testing.T) {
	h := newHarness(t, streamer.Settings{})
	handler := NewHandler(h.svc, &fakeProducer{}, "chat.visible", false, logger.NopLogger()).
		WithDeduplicator(&seenSet{err: errors.New("redis down")})

	event := models.NewChatEventBuilder().WithText("<Notch> hello").Build()
	err := handler.HandleChatEvent(context.Background(), encode(t, event))
	require.Error(t, err)
	assert.False(t, retry.IsFatal(err))
}
