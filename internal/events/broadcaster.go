package events

import (
	"context"
	"encoding/json"
	"time"
)

// Publisher delivers a raw message to a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Envelope is the JSON message subscribers receive.
type Envelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// Broadcaster fans entity changes out to connected clients. Delivery is at
// most once: there is no retry and no persistence.
type Broadcaster struct {
	publisher Publisher
	channel   string
	timeout   time.Duration
	now       func() time.Time
}

// NewBroadcaster returns a broadcaster that publishes on channel. A nil
// publisher disables broadcasting.
func NewBroadcaster(publisher Publisher, channel string) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		channel:   channel,
		timeout:   2 * time.Second,
		now:       time.Now,
	}
}

// Broadcast encodes payload under name and publishes it.
func (b *Broadcaster) Broadcast(ctx context.Context, name string, payload any) error {
	if b == nil || b.publisher == nil {
		return nil
	}
	raw, err := json.Marshal(Envelope{Event: name, Payload: payload, SentAt: b.now().UTC()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()
	return b.publisher.Publish(ctx, b.channel, raw)
}
