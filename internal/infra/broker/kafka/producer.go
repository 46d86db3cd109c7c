package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"stayfinder/internal/app/events"
)

// Producer publishes domain events to Kafka. Topic names are the event type
// with dots replaced by dashes, optionally prefixed per environment.
type Producer struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

func NewProducer(brokers []string, topicPrefix string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}
	return &Producer{producer: p, topicPrefix: strings.TrimSpace(topicPrefix)}, nil
}

func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(eventMessage{
		Type:       event.Type,
		OccurredAt: event.OccurredAt,
		Payload:    event.Payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic(event.Type),
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka: send %s: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

func (p *Producer) topic(eventType string) string {
	topic := strings.ReplaceAll(eventType, ".", "-")
	if p.topicPrefix != "" {
		return p.topicPrefix + "-" + topic
	}
	return topic
}

type eventMessage struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

var _ events.Publisher = (*Producer)(nil)
