package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Priority orders competing jobs of the same type. It travels as
// message metadata so consumers can shed low priority work first.
type Priority string

const (
	PriorityHigh    Priority = "high"
	PriorityDefault Priority = "default"
	PriorityLow     Priority = "low"

	metadataPriorityKey = "priority"
)

type IBus interface {
	Enqueue(ctx context.Context, topic string, payload interface{}, priority Priority) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Bus is an in-process job queue over a watermill gochannel pub/sub.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus(pubSub *gochannel.GoChannel) *Bus {
	return &Bus{pubSub: pubSub}
}

func (b *Bus) Enqueue(ctx context.Context, topic string, payload interface{}, priority Priority) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	if priority == "" {
		priority = PriorityDefault
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataPriorityKey, string(priority))
	msg.SetContext(ctx)

	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish job to topic %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// PriorityOf reads the priority a message was enqueued with.
func PriorityOf(msg *message.Message) Priority {
	p := Priority(msg.Metadata.Get(metadataPriorityKey))
	if p == "" {
		return PriorityDefault
	}
	return p
}
