package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"course-platform/pkg/utils"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// CompletedEvent is emitted once per successful materialization. Delivery
// semantics past this point (retries, fan-out to WhatsApp/email) belong to
// the notification consumers.
type CompletedEvent struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	TargetType    string `json:"target_type"` // course | event
	TargetID      string `json:"target_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// Dispatcher is the outbound boundary to the notification system.
type Dispatcher interface {
	PaymentCompleted(ctx context.Context, event CompletedEvent) error
}

// KafkaDispatcher publishes completion events to a Kafka topic.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewKafkaDispatcher(config utils.KafkaConfig, log *zap.Logger) (*KafkaDispatcher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaDispatcher{
		producer: producer,
		topic:    config.Topic,
		log:      log.With(zap.String("dispatcher", "kafka")),
	}, nil
}

func (d *KafkaDispatcher) PaymentCompleted(ctx context.Context, event CompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(event.PaymentID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := d.producer.SendMessage(msg)
	if err != nil {
		d.log.Error("Failed to publish completion event",
			zap.Error(err),
			zap.String("payment_id", event.PaymentID),
		)
		return fmt.Errorf("publish completion event for payment %s: %w", event.PaymentID, err)
	}

	d.log.Info("Completion event published",
		zap.String("payment_id", event.PaymentID),
		zap.String("target_type", event.TargetType),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)

	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}

// NoopDispatcher is used when no brokers are configured; events are logged
// and dropped.
type NoopDispatcher struct {
	log *zap.Logger
}

func NewNoopDispatcher(log *zap.Logger) *NoopDispatcher {
	return &NoopDispatcher{log: log.With(zap.String("dispatcher", "noop"))}
}

func (d *NoopDispatcher) PaymentCompleted(_ context.Context, event CompletedEvent) error {
	d.log.Info("Notification dispatch skipped (no brokers configured)",
		zap.String("payment_id", event.PaymentID),
		zap.String("target_type", event.TargetType),
	)
	return nil
}
