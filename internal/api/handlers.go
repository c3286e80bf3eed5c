package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/database"
	"github.com/foliotrack/folio-service/internal/models"
	"github.com/foliotrack/folio-service/internal/valuation"
)

const dateFormat = "2006-01-02"

// PortfolioEngine is the valuation engine surface the handlers call
type PortfolioEngine interface {
	GetSnapshot(ctx context.Context, userID, target string) (*models.PortfolioSnapshot, error)
	GetPerformance(ctx context.Context, userID, target string, from, to time.Time) (*models.PerformanceResult, error)
}

// LedgerRepository defines the transaction store operations the API needs
type LedgerRepository interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id int) error
}

// SecurityRepository defines the watchlist store operations the API needs
type SecurityRepository interface {
	UpsertSecurity(ctx context.Context, s *models.Security) error
	ListSecurities(ctx context.Context) ([]models.Security, error)
}

// EventPublisher publishes ledger change events
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, t *models.Transaction) error
	PublishTransactionDeleted(ctx context.Context, userID string, id int) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine          PortfolioEngine
	ledger          LedgerRepository
	securities      SecurityRepository
	producer        EventPublisher
	defaultCurrency string
	logger          logrus.FieldLogger
}

// NewHandler creates a new Handler. producer may be nil when Kafka is
// disabled.
func NewHandler(engine PortfolioEngine, ledger LedgerRepository, securities SecurityRepository, producer EventPublisher, defaultCurrency string, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		engine:          engine,
		ledger:          ledger,
		securities:      securities,
		producer:        producer,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// GetSnapshot handles GET /users/{userID}/portfolio/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = h.defaultCurrency
	}

	snapshot, err := h.engine.GetSnapshot(r.Context(), userID, currency)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// GetPerformance handles GET /users/{userID}/portfolio/performance
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	q := r.URL.Query()

	currency := q.Get("currency")
	if currency == "" {
		currency = h.defaultCurrency
	}

	from, err := time.Parse(dateFormat, q.Get("from"))
	if err != nil {
		http.Error(w, "invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(dateFormat, q.Get("to"))
	if err != nil {
		http.Error(w, "invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.engine.GetPerformance(r.Context(), userID, currency, from, to)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// decodeTransaction reads and validates a transaction body. On failure it
// writes the 400 response itself and returns nil.
func decodeTransaction(w http.ResponseWriter, r *http.Request, userID string) *models.Transaction {
	var req struct {
		Symbol        string          `json:"symbol"`
		Side          string          `json:"side"`
		Quantity      decimal.Decimal `json:"quantity"`
		Price         decimal.Decimal `json:"price"`
		PriceCurrency string          `json:"price_currency"`
		Fee           decimal.Decimal `json:"fee"`
		FeeCurrency   string          `json:"fee_currency"`
		TradeDate     string          `json:"trade_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return nil
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		http.Error(w, "side must be BUY or SELL", http.StatusBadRequest)
		return nil
	}
	if !req.Quantity.IsPositive() {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return nil
	}
	if !req.Price.IsPositive() {
		http.Error(w, "price must be positive", http.StatusBadRequest)
		return nil
	}
	if req.Fee.IsNegative() {
		http.Error(w, "fee must not be negative", http.StatusBadRequest)
		return nil
	}
	if !models.IsSupportedCurrency(req.PriceCurrency) {
		http.Error(w, "unsupported price currency", http.StatusBadRequest)
		return nil
	}
	if req.FeeCurrency != "" && !models.IsSupportedCurrency(req.FeeCurrency) {
		http.Error(w, "unsupported fee currency", http.StatusBadRequest)
		return nil
	}
	tradeDate, err := time.Parse(dateFormat, req.TradeDate)
	if err != nil {
		http.Error(w, "invalid trade_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return nil
	}

	return &models.Transaction{
		UserID:        userID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Quantity:      req.Quantity,
		Price:         req.Price,
		PriceCurrency: req.PriceCurrency,
		Fee:           req.Fee,
		FeeCurrency:   req.FeeCurrency,
		TradeDate:     tradeDate,
	}
}

// CreateTransaction handles POST /users/{userID}/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	txn := decodeTransaction(w, r, userID)
	if txn == nil {
		return
	}
	if err := h.ledger.CreateTransaction(r.Context(), txn); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTransactionRecorded(r.Context(), txn); err != nil {
			h.logger.WithError(err).Warn("failed to publish transaction event")
		}
	}

	respondJSON(w, http.StatusCreated, txn)
}

// UpdateTransaction handles PUT /users/{userID}/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	txn := decodeTransaction(w, r, userID)
	if txn == nil {
		return
	}
	txn.ID = id

	if err := h.ledger.UpdateTransaction(r.Context(), txn); err != nil {
		h.respondLedgerError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTransactionRecorded(r.Context(), txn); err != nil {
			h.logger.WithError(err).Warn("failed to publish transaction event")
		}
	}

	respondJSON(w, http.StatusOK, txn)
}

// ListTransactions handles GET /users/{userID}/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	txns, err := h.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	respondJSON(w, http.StatusOK, txns)
}

// DeleteTransaction handles DELETE /users/{userID}/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		h.respondLedgerError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTransactionDeleted(r.Context(), userID, id); err != nil {
			h.logger.WithError(err).Warn("failed to publish transaction event")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpsertSecurity handles PUT /securities/{symbol}
func (h *Handler) UpsertSecurity(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var req struct {
		Name            string `json:"name"`
		Exchange        string `json:"exchange"`
		TradingCurrency string `json:"trading_currency"`
		Watchlisted     *bool  `json:"watchlisted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TradingCurrency != "" && !models.IsSupportedCurrency(req.TradingCurrency) {
		http.Error(w, "unsupported trading currency", http.StatusBadRequest)
		return
	}

	security := &models.Security{
		Symbol:          symbol,
		Name:            req.Name,
		Exchange:        req.Exchange,
		TradingCurrency: req.TradingCurrency,
		Watchlisted:     true,
	}
	if req.Watchlisted != nil {
		security.Watchlisted = *req.Watchlisted
	}

	if err := h.securities.UpsertSecurity(r.Context(), security); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, security)
}

// ListSecurities handles GET /securities
func (h *Handler) ListSecurities(w http.ResponseWriter, r *http.Request) {
	securities, err := h.securities.ListSecurities(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if securities == nil {
		securities = []models.Security{}
	}
	respondJSON(w, http.StatusOK, securities)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) respondLedgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.WithError(err).Error("ledger request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, valuation.ErrUnsupportedCurrency),
		errors.Is(err, valuation.ErrInvalidDateRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.WithError(err).Error("valuation request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
