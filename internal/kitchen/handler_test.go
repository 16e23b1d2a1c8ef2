package kitchen

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkax "kitchenline/internal/kafka"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fulfillRecorder struct {
	batches [][]DispatchedOrder
}

func (f *fulfillRecorder) Fulfill(ctx context.Context, batch []DispatchedOrder) {
	f.batches = append(f.batches, batch)
}

func newDispatchFixture(t *testing.T) (*DispatchHandler, *fulfillRecorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec := &fulfillRecorder{}
	return &DispatchHandler{Saga: rec, Redis: rdb, Log: zaptest.NewLogger(t)}, rec
}

func dispatchMessage(t *testing.T, eventID string, payload any) kafkago.Message {
	t.Helper()
	ev := Envelope{
		EventID:      eventID,
		EventType:    EventOrderDispatched,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "manager",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(ev)}
}

func TestHandleOrderDispatched_Batch(t *testing.T) {
	h, rec := newDispatchFixture(t)

	batch := []DispatchedOrder{{ID: "1", CustomerID: "10"}, {ID: "2", CustomerID: "20"}}
	err := h.HandleOrderDispatched(context.Background(), dispatchMessage(t, "ev-1", batch))

	require.NoError(t, err)
	require.Len(t, rec.batches, 1)
	assert.Equal(t, batch, rec.batches[0])
}

func TestHandleOrderDispatched_SingleOrderPayload(t *testing.T) {
	h, rec := newDispatchFixture(t)

	err := h.HandleOrderDispatched(context.Background(),
		dispatchMessage(t, "ev-1", DispatchedOrder{ID: "1", CustomerID: "10"}))

	require.NoError(t, err)
	require.Len(t, rec.batches, 1)
	assert.Equal(t, []DispatchedOrder{{ID: "1", CustomerID: "10"}}, rec.batches[0])
}

func TestHandleOrderDispatched_DuplicateEventSkipped(t *testing.T) {
	h, rec := newDispatchFixture(t)

	msg := dispatchMessage(t, "ev-dup", []DispatchedOrder{{ID: "1", CustomerID: "10"}})
	require.NoError(t, h.HandleOrderDispatched(context.Background(), msg))
	require.NoError(t, h.HandleOrderDispatched(context.Background(), msg))

	assert.Len(t, rec.batches, 1)
}

func TestHandleOrderDispatched_IgnoresOtherEventTypes(t *testing.T) {
	h, rec := newDispatchFixture(t)

	ev := Envelope{
		EventID:   "ev-1",
		EventType: EventOrderStatusChanged,
		Payload:   json.RawMessage(`{}`),
	}
	err := h.HandleOrderDispatched(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(ev)})

	require.NoError(t, err)
	assert.Empty(t, rec.batches)
}

func TestHandleOrderDispatched_PoisonMessageConsumed(t *testing.T) {
	h, rec := newDispatchFixture(t)

	// malformed envelope must not trigger redelivery
	err := h.HandleOrderDispatched(context.Background(), kafkago.Message{Value: []byte("not json")})
	require.NoError(t, err)

	// malformed payload likewise
	err = h.HandleOrderDispatched(context.Background(), kafkago.Message{
		Value: kafkax.MustMarshal(Envelope{
			EventID:   "ev-bad",
			EventType: EventOrderDispatched,
			Payload:   json.RawMessage(`42`),
		}),
	})
	require.NoError(t, err)
	assert.Empty(t, rec.batches)
}

func TestHandleOrderDispatched_EmptyBatchIgnored(t *testing.T) {
	h, rec := newDispatchFixture(t)

	err := h.HandleOrderDispatched(context.Background(), dispatchMessage(t, "ev-1", []DispatchedOrder{}))
	require.NoError(t, err)
	assert.Empty(t, rec.batches)
}
