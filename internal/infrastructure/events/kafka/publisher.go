package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events"
)

// Publisher implements events.EventBus on a Kafka sync producer. The
// destination is the topic and the episode id is the partition key, so
// one episode's events stay ordered.
type Publisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewProducerConfig returns the producer settings the publisher relies on
func NewProducerConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_8_0_0
	return cfg
}

// NewPublisher connects a sync producer to the configured brokers
func NewPublisher(cfg *config.Config, logger *zap.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, NewProducerConfig(cfg.Kafka.ClientID))
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}
	return NewPublisherWithProducer(producer, logger), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, logger *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger.Named("kafka"),
	}
}

// Publish sends msg and waits for the brokers to acknowledge it
func (p *Publisher) Publish(ctx context.Context, msg events.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: msg.Destination,
		Key:   sarama.StringEncoder(msg.Key),
		Value: sarama.ByteEncoder(msg.Data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(msg.ID)},
			{Key: []byte("event_type"), Value: []byte(msg.EventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("topic", msg.Destination),
		zap.String("event_id", msg.ID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.producer.Close()
}
