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

// FxRateRepository defines the FX store operations the consumer needs
type FxRateRepository interface {
	UpsertFxRate(ctx context.Context, r *models.FxRate) error
}

// FxConsumer ingests fetched exchange rates into the FX store
type FxConsumer struct {
	reader *kafka.Reader
	repo   FxRateRepository
	logger logrus.FieldLogger
}

// NewFxConsumer creates a Kafka consumer for FX rate events
func NewFxConsumer(brokers []string, topic, groupID string, repo FxRateRepository, logger logrus.FieldLogger) *FxConsumer {
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
	return &FxConsumer{
		reader: reader,
		repo:   repo,
		logger: logger,
	}
}

// Start begins consuming messages from Kafka
func (c *FxConsumer) Start(ctx context.Context) error {
	c.logger.WithField("topic", c.reader.Config().Topic).Info("starting fx consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("fx consumer shutting down")
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
				c.logger.WithError(err).Error("failed to process fx message")
			}
		}
	}
}

func (c *FxConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.FxRateEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal fx event: %w", err)
	}

	if event.EventType != "FX_RATE_RECORDED" {
		c.logger.WithField("event_type", event.EventType).Debug("ignoring event")
		return nil
	}

	if event.BaseCurrency == "" || event.QuoteCurrency == "" {
		return fmt.Errorf("fx event missing currency pair")
	}
	if !event.Rate.IsPositive() {
		return fmt.Errorf("invalid rate %s for %s/%s", event.Rate, event.BaseCurrency, event.QuoteCurrency)
	}

	rate := &models.FxRate{
		BaseCurrency:  event.BaseCurrency,
		QuoteCurrency: event.QuoteCurrency,
		Rate:          event.Rate,
		FetchedAt:     event.FetchedAt,
	}
	if err := c.repo.UpsertFxRate(ctx, rate); err != nil {
		return fmt.Errorf("failed to save fx rate: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"base":  event.BaseCurrency,
		"quote": event.QuoteCurrency,
		"rate":  event.Rate.String(),
	}).Debug("saved fx rate")
	return nil
}
