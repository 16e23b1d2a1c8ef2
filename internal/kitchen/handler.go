package kitchen

import (
	"context"
	"encoding/json"
	"fmt"

	"kitchenline/internal/redisx"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Fulfiller is what the handler needs from the saga.
type Fulfiller interface {
	Fulfill(ctx context.Context, batch []DispatchedOrder)
}

// DispatchHandler consumes order_dispatched messages. It always returns nil
// so the consumer commits the offset: a failed batch is reported through
// FAILED status events, never through broker redelivery.
type DispatchHandler struct {
	Saga  Fulfiller
	Redis *redis.Client
	Log   *zap.Logger
}

func (h *DispatchHandler) HandleOrderDispatched(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		h.Log.Error("invalid envelope, dropping message", zap.Error(err))
		return nil
	}
	if env.EventType != EventOrderDispatched {
		return nil
	}

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "kitchen", env.EventID)
	exists, _ := redisx.Exists(ctx, h.Redis, dkey)
	if exists {
		h.Log.Info("duplicate dispatch event skipped", zap.String("event_id", env.EventID))
		return nil
	}
	_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	batch, err := decodeDispatchPayload(env.Payload)
	if err != nil {
		h.Log.Error("invalid dispatch payload, dropping message",
			zap.Error(err), zap.String("event_id", env.EventID))
		return nil
	}
	if len(batch) == 0 {
		return nil
	}

	h.Saga.Fulfill(ctx, batch)
	return nil
}

// decodeDispatchPayload accepts both shapes the upstream sends: an ordered
// batch of orders or a single order object.
func decodeDispatchPayload(raw json.RawMessage) ([]DispatchedOrder, error) {
	var batch []DispatchedOrder
	if err := json.Unmarshal(raw, &batch); err == nil {
		return batch, nil
	}

	var single DispatchedOrder
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode dispatch payload: %w", err)
	}
	if single.ID == "" {
		return nil, fmt.Errorf("dispatch payload has no order id")
	}
	return []DispatchedOrder{single}, nil
}
