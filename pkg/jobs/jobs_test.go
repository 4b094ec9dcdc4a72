package jobs

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"knowledge-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	RecordID string `json:"record_id"`
}

func TestBusEnqueueCarriesPayloadAndPriority(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := NewBus(pubSub)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "test.topic")
	require.NoError(t, err)

	err = bus.Enqueue(ctx, "test.topic", testPayload{RecordID: "rec-1"}, PriorityHigh)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		var got testPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "rec-1", got.RecordID)
		assert.Equal(t, PriorityHigh, PriorityOf(msg))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestBusEnqueueDefaultsPriority(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := NewBus(pubSub)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "test.topic")
	require.NoError(t, err)

	require.NoError(t, bus.Enqueue(ctx, "test.topic", testPayload{RecordID: "rec-2"}, ""))

	select {
	case msg := <-messages:
		assert.Equal(t, PriorityDefault, PriorityOf(msg))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestResyncSchedulerRetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	sync := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, assert.AnError
	}

	s := NewResyncScheduler("test", sync, time.Hour, 5*time.Millisecond, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	// Failure delay is short, so several retries fit in the window.
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestResyncSchedulerUsesLongDelayAfterSuccess(t *testing.T) {
	var calls atomic.Int32
	sync := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}

	s := NewResyncScheduler("test", sync, time.Hour, time.Millisecond, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	// One immediate pass, then parked on the hour-long success delay.
	assert.Equal(t, int32(1), calls.Load())
}
