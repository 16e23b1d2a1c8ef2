// Package warehouse talks to the external warehouse service over Kafka
// using request/reply: a request carries a correlation id, the matching
// reply comes back on a per-process reply topic subscription.
package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkax "kitchenline/internal/kafka"
	"kitchenline/internal/kitchen"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// requestWriter matches the synchronous path of kafkax.Producer.
type requestWriter interface {
	Write(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

type Client struct {
	producer requestWriter
	timeout  time.Duration
	service  string
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]chan kitchen.IngredientsReplyPayload
}

func NewClient(producer requestWriter, timeout time.Duration, service string, log *zap.Logger) *Client {
	return &Client{
		producer: producer,
		timeout:  timeout,
		service:  service,
		log:      log,
		pending:  map[string]chan kitchen.IngredientsReplyPayload{},
	}
}

// RequestIngredients sends one aggregated reservation request and blocks for
// the reply. The bool is the warehouse's verdict; an error always means the
// warehouse could not be reached, never a denial.
func (c *Client) RequestIngredients(ctx context.Context, req *kitchen.IngredientsRequest) (bool, error) {
	corrID := uuid.NewString()
	ch := c.register(corrID)
	defer c.unregister(corrID)

	ev := kitchen.Envelope{
		EventID:       uuid.NewString(),
		EventType:     kitchen.EventRequestIngredients,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.service,
		CorrelationID: corrID,
		Payload:       kafkax.MustMarshal(req.Payload()),
	}

	c.log.Info("requesting ingredients in bulk",
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("orders", len(req.OrderIDs)),
		zap.String("correlation_id", corrID),
	)

	if err := c.producer.Write(ctx, []byte(corrID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(kitchen.EventRequestIngredients)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	); err != nil {
		return false, fmt.Errorf("%w: send request: %v", kitchen.ErrWarehouseUnreachable, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		return reply.Success, nil
	case <-timer.C:
		return false, fmt.Errorf("%w: no reply within %s", kitchen.ErrWarehouseUnreachable, c.timeout)
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", kitchen.ErrWarehouseUnreachable, ctx.Err())
	}
}

// HandleReply is the consumer handler for the reply topic. Replies with no
// in-flight request (late replies, other instances') are dropped.
func (c *Client) HandleReply(ctx context.Context, m kafkago.Message) error {
	var env kitchen.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		c.log.Error("invalid warehouse reply, dropping", zap.Error(err))
		return nil
	}
	if env.EventType != kitchen.EventIngredientsReply {
		return nil
	}

	reply, err := kafkax.UnwrapPayload[kitchen.IngredientsReplyPayload](env.Payload)
	if err != nil {
		c.log.Error("invalid warehouse reply payload, dropping",
			zap.Error(err), zap.String("correlation_id", env.CorrelationID))
		return nil
	}

	c.mu.Lock()
	ch, ok := c.pending[env.CorrelationID]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case ch <- reply:
	default: // already answered
	}
	return nil
}

func (c *Client) register(corrID string) chan kitchen.IngredientsReplyPayload {
	ch := make(chan kitchen.IngredientsReplyPayload, 1)
	c.mu.Lock()
	c.pending[corrID] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) unregister(corrID string) {
	c.mu.Lock()
	delete(c.pending, corrID)
	c.mu.Unlock()
}
