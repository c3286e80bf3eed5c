package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/foliotrack/folio-service/internal/models"
)

// Producer handles publishing ledger events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTransactionRecorded publishes a ledger entry created event
func (p *Producer) PublishTransactionRecorded(ctx context.Context, t *models.Transaction) error {
	event := models.TransactionEvent{
		EventType:   "TRANSACTION_RECORDED",
		UserID:      t.UserID,
		Transaction: t,
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, t.UserID, event)
}

// PublishTransactionDeleted publishes a ledger entry deleted event
func (p *Producer) PublishTransactionDeleted(ctx context.Context, userID string, id int) error {
	event := models.TransactionEvent{
		EventType:   "TRANSACTION_DELETED",
		UserID:      userID,
		Transaction: &models.Transaction{ID: id, UserID: userID},
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, userID, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
