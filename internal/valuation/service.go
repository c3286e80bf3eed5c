package valuation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/models"
)

// Validation failures, rejected before any computation begins.
var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

// LedgerStore reads a user's transaction ledger. No ordering is implied;
// the engine sorts and groups by date itself.
type LedgerStore interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

// FxStore reads the full, unfiltered set of stored FX rates.
type FxStore interface {
	ListFxRates(ctx context.Context) ([]models.FxRate, error)
}

// PriceStore reads daily closes from the time-series store.
type PriceStore interface {
	ListDailyCloses(ctx context.Context, symbols []string, startInclusive, stopExclusive time.Time) ([]models.PricePoint, error)
	LatestCloses(ctx context.Context, symbols []string) (map[string]models.PricePoint, error)
}

// SecurityStore reads symbol metadata. TradingCurrency returns "" when the
// symbol has no registered trading currency.
type SecurityStore interface {
	TradingCurrency(ctx context.Context, symbol string) (string, error)
}

// Config carries the engine's tunables.
type Config struct {
	// PivotCurrency is the triangulation currency for indirect FX paths.
	PivotCurrency string
	// DefaultCurrency is the last resort of the native-currency fallback
	// chain.
	DefaultCurrency string
	// SeedDays is how far before the range the price query reaches so the
	// first day can already carry a forward-filled close. Minimum 7.
	SeedDays int
}

func (c Config) withDefaults() Config {
	if c.PivotCurrency == "" {
		c.PivotCurrency = models.CurrencyUSD
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = models.CurrencyUSD
	}
	if c.SeedDays < 7 {
		c.SeedDays = 7
	}
	return c
}

// Service is the valuation and returns engine. Every invocation is an
// independent, side-effect-free computation over read-only store queries:
// the FX matrix and price series are rebuilt per request, never shared
// across requests.
type Service struct {
	ledger     LedgerStore
	prices     PriceStore
	fx         FxStore
	securities SecurityStore
	cfg        Config
	logger     logrus.FieldLogger
}

// NewService creates the engine over its four external stores.
func NewService(ledger LedgerStore, prices PriceStore, fx FxStore, securities SecurityStore, cfg Config, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		ledger:     ledger,
		prices:     prices,
		fx:         fx,
		securities: securities,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// GetSnapshot returns the user's current holdings with per-symbol valuation
// and weights in the target currency.
func (s *Service) GetSnapshot(ctx context.Context, userID, target string) (*models.PortfolioSnapshot, error) {
	if !models.IsSupportedCurrency(target) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, target)
	}

	txns, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(txns) == 0 {
		return &models.PortfolioSnapshot{
			Currency:   target,
			Items:      []models.SnapshotItem{},
			TotalValue: decimal.Zero,
			AsOf:       time.Now().UTC(),
		}, nil
	}

	conv, err := s.buildConverter(ctx)
	if err != nil {
		return nil, err
	}
	nativeCurrency, err := s.currencyResolver(ctx, txns)
	if err != nil {
		return nil, err
	}

	holdings := ReconstructHoldings(txns, target, conv)
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}

	latest := map[string]models.PricePoint{}
	if len(symbols) > 0 {
		latest, err = s.prices.LatestCloses(ctx, symbols)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest closes: %w", err)
		}
	}

	snapshot := ComposeSnapshot(holdings, latest, target, conv, nativeCurrency)
	snapshot.AsOf = time.Now().UTC()
	return &snapshot, nil
}

// GetPerformance returns the TWR/MWR performance series for [from, to] in
// the target currency, plus inception-to-date scalar summaries.
func (s *Service) GetPerformance(ctx context.Context, userID, target string, from, to time.Time) (*models.PerformanceResult, error) {
	if !models.IsSupportedCurrency(target) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, target)
	}
	if from.IsZero() || to.IsZero() || Day(from).After(Day(to)) {
		return nil, ErrInvalidDateRange
	}

	txns, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(txns) == 0 {
		result := WindowPerformance(nil, from, to)
		result.Currency = target
		return &result, nil
	}

	conv, err := s.buildConverter(ctx)
	if err != nil {
		return nil, err
	}
	nativeCurrency, err := s.currencyResolver(ctx, txns)
	if err != nil {
		return nil, err
	}

	inception := Day(txns[0].TradeDate)
	symbolSet := make(map[string]struct{})
	for _, t := range txns {
		if d := Day(t.TradeDate); d.Before(inception) {
			inception = d
		}
		symbolSet[t.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	through := Day(to)
	seedStart := inception.AddDate(0, 0, -s.cfg.SeedDays)
	points, err := s.prices.ListDailyCloses(ctx, symbols, seedStart, through.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily closes: %w", err)
	}
	series := BuildDailySeries(points, inception, through)

	chain := BuildNavChain(txns, series, target, conv, nativeCurrency, through)
	result := WindowPerformance(chain, from, to)
	result.Currency = target
	return &result, nil
}

func (s *Service) buildConverter(ctx context.Context) (*Converter, error) {
	rates, err := s.fx.ListFxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fx rates: %w", err)
	}
	return NewConverter(BuildFxMatrix(rates), s.cfg.PivotCurrency, s.logger), nil
}

// currencyResolver builds the per-request native-currency lookup for a
// symbol: registered trading currency first, then the currency of the most
// recent transaction in the symbol, then the configured default. All store
// lookups happen here, before any computation: a metadata store failure
// fails the request rather than silently changing which currency a close
// is valued in.
func (s *Service) currencyResolver(ctx context.Context, txns []models.Transaction) (func(symbol string) string, error) {
	lastCurrency := make(map[string]string)
	lastDate := make(map[string]time.Time)
	for _, t := range txns {
		if prev, ok := lastDate[t.Symbol]; !ok || t.TradeDate.After(prev) {
			lastDate[t.Symbol] = t.TradeDate
			lastCurrency[t.Symbol] = t.PriceCurrency
		}
	}

	registered := make(map[string]string, len(lastCurrency))
	for symbol := range lastCurrency {
		currency, err := s.securities.TradingCurrency(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to get trading currency for %s: %w", symbol, err)
		}
		registered[symbol] = currency
	}

	fromSecurities := func(symbol string) string {
		return registered[symbol]
	}
	fromLedger := func(symbol string) string {
		return lastCurrency[symbol]
	}
	fromDefault := func(string) string {
		return s.cfg.DefaultCurrency
	}

	return func(symbol string) string {
		return resolveNativeCurrency(symbol, fromSecurities, fromLedger, fromDefault)
	}, nil
}
