package kitchen

import (
	"context"
	"fmt"
	"time"

	kafkax "kitchenline/internal/kafka"
	"kitchenline/internal/redisx"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PublishMode picks how status events leave the process. One mode per
// process, set at startup; never varied per call site.
type PublishMode string

const (
	// PublishAsync: buffered fire-and-forget (the batch-processing design).
	PublishAsync PublishMode = "async"
	// PublishSync: blocking write with backpressure (the earlier design).
	PublishSync PublishMode = "sync"
)

func ParsePublishMode(s string) (PublishMode, error) {
	switch PublishMode(s) {
	case PublishAsync, PublishSync:
		return PublishMode(s), nil
	}
	return "", fmt.Errorf("unknown publish mode %q", s)
}

// eventSink matches kafkax.Producer.
type eventSink interface {
	Publish(key, value []byte, headers ...kafkago.Header)
	Write(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// StatusPublisher emits order_status_changed envelopes to the manager topic
// and mirrors each order's latest status into the Redis cache the HTTP
// surface reads. Publish problems are logged and swallowed: the saga's
// control flow never depends on event delivery.
type StatusPublisher struct {
	sink    eventSink
	mode    PublishMode
	redis   *redis.Client
	service string
	log     *zap.Logger
}

func NewStatusPublisher(sink eventSink, mode PublishMode, rdb *redis.Client, service string, log *zap.Logger) *StatusPublisher {
	return &StatusPublisher{sink: sink, mode: mode, redis: rdb, service: service, log: log}
}

func (p *StatusPublisher) OrderStatusChanged(ctx context.Context, orders []OrderStatusRef) {
	if len(orders) == 0 {
		return
	}

	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: orders[0].ID,
		Payload:       kafkax.MustMarshal(OrderStatusChangedPayload{Orders: orders}),
	}
	value := kafkax.MustMarshal(ev)
	key := PartitionKey(orders[0].ID)
	headers := []kafkago.Header{
		{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		{Key: "x-event-version", Value: []byte("1")},
	}

	if p.mode == PublishSync {
		if err := p.sink.Write(ctx, key, value, headers...); err != nil {
			p.log.Error("publish order status", zap.Error(err), zap.String("status", string(orders[0].StatusID)))
		}
	} else {
		p.sink.Publish(key, value, headers...)
	}

	p.cacheStatuses(ctx, orders)
}

// cacheStatuses keeps the order_status:{id} keys warm for GET /orders/{id}.
func (p *StatusPublisher) cacheStatuses(ctx context.Context, orders []OrderStatusRef) {
	if p.redis == nil {
		return
	}
	for _, o := range orders {
		key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
		body := fmt.Sprintf(`{"status":%q}`, o.StatusID)
		if err := p.redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
			p.log.Warn("status cache set", zap.Error(err), zap.String("order_id", o.ID))
		}
	}
}
