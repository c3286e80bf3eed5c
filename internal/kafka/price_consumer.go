package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/models"
)

// PriceRepository defines the price store operations the consumer needs
type PriceRepository interface {
	UpsertPrice(ctx context.Context, p *models.PricePoint) error
}

// PriceConsumer ingests daily close events into the time-series store.
// Upserts are idempotent on (symbol, date), so replayed messages are
// harmless.
type PriceConsumer struct {
	reader *kafka.Reader
	repo   PriceRepository
	logger logrus.FieldLogger
}

// NewPriceConsumer creates a Kafka consumer for daily price events
func NewPriceConsumer(brokers []string, topic, groupID string, repo PriceRepository, logger logrus.FieldLogger) *PriceConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PriceConsumer{
		reader: reader,
		repo:   repo,
		logger: logger,
	}
}

// Start begins consuming messages from Kafka
func (c *PriceConsumer) Start(ctx context.Context) error {
	c.logger.WithField("topic", c.reader.Config().Topic).Info("starting price consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("price consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.WithError(err).Error("failed to read message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.WithError(err).Error("failed to process price message")
			}
		}
	}
}

func (c *PriceConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PriceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price event: %w", err)
	}

	if event.EventType != "PRICE_RECORDED" {
		c.logger.WithField("event_type", event.EventType).Debug("ignoring event")
		return nil
	}

	date, err := time.Parse("2006-01-02", event.Date)
	if err != nil {
		return fmt.Errorf("invalid price date %q: %w", event.Date, err)
	}
	if event.Symbol == "" {
		return fmt.Errorf("price event missing symbol")
	}
	if !event.Close.IsPositive() {
		return fmt.Errorf("invalid close %s for %s", event.Close, event.Symbol)
	}

	point := &models.PricePoint{
		Symbol: event.Symbol,
		Date:   date,
		Close:  event.Close,
	}
	if err := c.repo.UpsertPrice(ctx, point); err != nil {
		return fmt.Errorf("failed to save price: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": event.Symbol,
		"date":   event.Date,
		"close":  event.Close.String(),
	}).Debug("saved daily close")
	return nil
}
