package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/models"
	"github.com/foliotrack/folio-service/internal/valuation"
)

const quoteKeyPrefix = "quote:latest:"

// QuoteCache is a read-through Redis cache in front of a price store. Only
// the latest close per symbol is cached, TTL-bounded: it feeds the snapshot
// view, where a slightly stale quote is acceptable. Historical series
// queries pass straight through, so the per-request forward-fill always
// works from store data. Any Redis failure degrades to the store.
type QuoteCache struct {
	rdb    *redis.Client
	store  valuation.PriceStore
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewQuoteCache wraps a price store with a Redis latest-quote cache
func NewQuoteCache(rdb *redis.Client, store valuation.PriceStore, ttl time.Duration, logger logrus.FieldLogger) *QuoteCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QuoteCache{
		rdb:    rdb,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// ListDailyCloses passes through to the underlying store
func (c *QuoteCache) ListDailyCloses(ctx context.Context, symbols []string, startInclusive, stopExclusive time.Time) ([]models.PricePoint, error) {
	return c.store.ListDailyCloses(ctx, symbols, startInclusive, stopExclusive)
}

// LatestCloses returns the most recent close per symbol, serving hits from
// Redis and filling misses from the store
func (c *QuoteCache) LatestCloses(ctx context.Context, symbols []string) (map[string]models.PricePoint, error) {
	latest := make(map[string]models.PricePoint, len(symbols))
	var misses []string

	keys := make([]string, len(symbols))
	for i, symbol := range symbols {
		keys[i] = quoteKeyPrefix + symbol
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.WithError(err).Warn("quote cache read failed, falling back to store")
		return c.store.LatestCloses(ctx, symbols)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, symbols[i])
			continue
		}
		var p models.PricePoint
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			misses = append(misses, symbols[i])
			continue
		}
		latest[symbols[i]] = p
	}

	if len(misses) == 0 {
		return latest, nil
	}

	fetched, err := c.store.LatestCloses(ctx, misses)
	if err != nil {
		return nil, err
	}
	for symbol, p := range fetched {
		latest[symbol] = p
		if data, err := json.Marshal(p); err == nil {
			if err := c.rdb.Set(ctx, quoteKeyPrefix+symbol, data, c.ttl).Err(); err != nil {
				c.logger.WithError(err).WithField("symbol", symbol).Warn("failed to cache quote")
			}
		}
	}
	return latest, nil
}

// Invalidate drops the cached quote for a symbol, used by ingestion when a
// fresher close arrives
func (c *QuoteCache) Invalidate(ctx context.Context, symbol string) error {
	return c.rdb.Del(ctx, quoteKeyPrefix+symbol).Err()
}
