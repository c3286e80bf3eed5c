package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Portfolio valuation
	api.HandleFunc("/users/{userID}/portfolio/snapshot", handler.GetSnapshot).Methods("GET")
	api.HandleFunc("/users/{userID}/portfolio/performance", handler.GetPerformance).Methods("GET")

	// Transaction ledger
	api.HandleFunc("/users/{userID}/transactions", handler.CreateTransaction).Methods("POST")
	api.HandleFunc("/users/{userID}/transactions", handler.ListTransactions).Methods("GET")
	api.HandleFunc("/users/{userID}/transactions/{id}", handler.UpdateTransaction).Methods("PUT")
	api.HandleFunc("/users/{userID}/transactions/{id}", handler.DeleteTransaction).Methods("DELETE")

	// Securities watchlist
	api.HandleFunc("/securities", handler.ListSecurities).Methods("GET")
	api.HandleFunc("/securities/{symbol}", handler.UpsertSecurity).Methods("PUT")

	return r
}
