package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	doneOnce  sync.Once
}

// NewProducer returns a buffered fire-and-forget producer: Publish queues,
// a background loop writes, Close flushes the remainder.
func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget untuk throughput
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// NewSyncProducer returns a producer for the blocking Write path only; it
// has no inbox loop and Start must not be called on it.
func NewSyncProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.closeInbox()
				for m := range p.inbox {
					_ = p.w.WriteMessages(context.Background(), m)
				}
				_ = p.w.Close()
				p.markDone()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					p.markDone()
					return
				}
				_ = p.w.WriteMessages(context.Background(), m)
			}
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Write delivers one message synchronously, honoring ctx for the deadline.
func (p *Producer) Write(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	})
}

// Tutup inbox supaya goroutine nge-flush sisa pesan lalu exit rapi.
func (p *Producer) Close() {
	if p.inbox != nil {
		p.closeInbox()
		return
	}
	_ = p.w.Close()
}

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() {
	if p.closeCh != nil {
		<-p.closeCh
	}
}

func (p *Producer) closeInbox() { p.closeOnce.Do(func() { close(p.inbox) }) }
func (p *Producer) markDone()   { p.doneOnce.Do(func() { close(p.closeCh) }) }
