package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes JSON events to a single topic.
type KafkaProducer struct {
	writer messageWriter
	topic  string
}

// NewKafkaProducer creates a writer for topic on brokerURL (e.g. "localhost:9092").
// Messages with the same key land on the same partition.
func NewKafkaProducer(brokerURL, topic string) *KafkaProducer {
	return NewKafkaProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokerURL),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, topic)
}

// NewKafkaProducerWithWriter wraps an existing writer.
func NewKafkaProducerWithWriter(w messageWriter, topic string) *KafkaProducer {
	return &KafkaProducer{writer: w, topic: topic}
}

// Publish JSON-encodes value and writes it under key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}

	log.Printf("Kafka published %d bytes to %s (key=%s)", len(payload), p.topic, key)
	return nil
}

// Close shuts down the Kafka writer to free resources.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
