package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	messages [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, payload)
	return p.err
}

func TestDispatcher_ContinuesAfterHandlerError(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBroadcaster_PublishesEnvelope(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	b := NewBroadcaster(pub, "helpdesk:events")
	b.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := b.Broadcast(context.Background(), string(EventNewsCreated), NewsPayload{ID: "n1", Title: "Maintenance"})
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "helpdesk:events", pub.channels[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0], &got))
	assert.Equal(t, "news:created", got["event"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["sent_at"])
	assert.Equal(t, map[string]any{"id": "n1", "title": "Maintenance"}, got["payload"])
}

func TestBroadcaster_ReturnsPublisherError(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("redis down")}
	err := NewBroadcaster(pub, "c").Broadcast(context.Background(), "ticket:deleted", nil)
	require.EqualError(t, err, "redis down")
}

func TestBroadcaster_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	var nilBroadcaster *Broadcaster
	require.NoError(t, nilBroadcaster.Broadcast(context.Background(), "x", nil))
	require.NoError(t, NewBroadcaster(nil, "c").Broadcast(context.Background(), "x", nil))
}

func TestBroadcaster_SurvivesCancelledRequest(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, NewBroadcaster(pub, "c").Broadcast(ctx, "ticket:updated", nil))
	assert.Len(t, pub.messages, 1)
}
