// Package events carries turn progress from the orchestration to whatever is
// rendering it.
package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Topic is the single topic turn events are published on.
const Topic = "turns"

// Type names an event.
type Type string

const (
	TypePhase   Type = "phase"   // the session entered a new phase
	TypeConfirm Type = "confirm" // the operator is being asked a question
	TypeState   Type = "state"   // the game state changed outside a turn (new game)
)

// Event is a change observed by the rendering layer.
type Event struct {
	Type      Type   `json:"type"`
	Phase     string `json:"phase,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ConfirmID string `json:"confirm_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// Bus is an in-process pub/sub for turn events.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// NewBus creates a bus. Publishing blocks until subscribers have acked, which
// keeps events in the order they happened.
func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
	}
}

// Publish sends an event to every subscriber.
func (b *Bus) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(Topic, msg); err != nil {
		log.Error().Err(err).Str("topic", Topic).Msg("events: failed to publish")
		return errors.Wrap(err, "publish event")
	}
	log.Trace().Str("event_type", string(ev.Type)).Str("phase", ev.Phase).Msg("events: published")
	return nil
}

// Subscribe returns a channel of decoded events that closes when ctx ends or
// the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	msgs, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe")
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				log.Warn().Err(err).Msg("events: dropping undecodable event")
				msg.Ack()
				continue
			}
			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down and closes all subscriptions.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
