package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/api"
	"github.com/foliotrack/folio-service/internal/cache"
	"github.com/foliotrack/folio-service/internal/config"
	"github.com/foliotrack/folio-service/internal/database"
	"github.com/foliotrack/folio-service/internal/kafka"
	"github.com/foliotrack/folio-service/internal/models"
	"github.com/foliotrack/folio-service/internal/valuation"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	quoteCache := cache.NewQuoteCache(rdb, db, cfg.Redis.QuoteTTL, logger)

	engine := valuation.NewService(db, quoteCache, db, db, valuation.Config{
		PivotCurrency:   cfg.Valuation.PivotCurrency,
		DefaultCurrency: cfg.Valuation.DefaultCurrency,
		SeedDays:        cfg.Valuation.SeedDays,
	}, logger)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TransactionsTopic)
	defer producer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	priceRepo := &invalidatingPriceRepo{db: db, cache: quoteCache, logger: logger}
	priceConsumer := kafka.NewPriceConsumer(cfg.Kafka.Brokers, cfg.Kafka.PricesTopic, cfg.Kafka.GroupID, priceRepo, logger)
	fxConsumer := kafka.NewFxConsumer(cfg.Kafka.Brokers, cfg.Kafka.FxRatesTopic, cfg.Kafka.GroupID, db, logger)

	go func() {
		if err := priceConsumer.Start(ctx); err != nil {
			logger.WithError(err).Error("price consumer stopped")
		}
	}()
	go func() {
		if err := fxConsumer.Start(ctx); err != nil {
			logger.WithError(err).Error("fx consumer stopped")
		}
	}()

	handler := api.NewHandler(engine, db, db, producer, cfg.Valuation.DefaultCurrency, logger)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("http server shutdown failed")
	}
}

// invalidatingPriceRepo stores ingested closes and drops the cached latest
// quote for the symbol so the snapshot view sees fresh data.
type invalidatingPriceRepo struct {
	db     *database.DB
	cache  *cache.QuoteCache
	logger logrus.FieldLogger
}

func (r *invalidatingPriceRepo) UpsertPrice(ctx context.Context, p *models.PricePoint) error {
	if err := r.db.UpsertPrice(ctx, p); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, p.Symbol); err != nil {
		r.logger.WithError(err).WithField("symbol", p.Symbol).Warn("failed to invalidate cached quote")
	}
	return nil
}
