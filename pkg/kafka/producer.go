package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is one record to publish. Records sharing a Key land on the same
// partition, which preserves per-aggregate ordering.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer writes to the service's event topic. It is safe for concurrent
// use; the underlying writer batches and manages connections itself.
type Producer struct {
	writer *kafkago.Writer
	topic  string
}

// NewProducer creates a producer bound to cfg.Topic.
func NewProducer(cfg Config) *Producer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	return &Producer{
		topic: cfg.Topic,
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: batchTimeout,
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

// Topic returns the topic this producer writes to.
func (p *Producer) Topic() string { return p.topic }

// Publish writes the messages as one batch.
func (p *Producer) Publish(ctx context.Context, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	records := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		record := kafkago.Message{Key: msg.Key, Value: msg.Value}
		for k, v := range msg.Headers {
			record.Headers = append(record.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		records = append(records, record)
	}

	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer for %s: %w", p.topic, err)
	}
	return nil
}
