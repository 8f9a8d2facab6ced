package api

import (
	"cargo-bidding-service/internal/api/handlers"
	"cargo-bidding-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers around company and returns an http.Handler.
func NewRouter(company *services.Company, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	agent := handlers.NewAgentHandler(company)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/fleet", agent.Fleet)
	mux.HandleFunc("/rounds/pre-inform", agent.PreInform)
	mux.HandleFunc("/rounds/inform", agent.Inform)
	mux.HandleFunc("/rounds/receive", agent.Receive)
	mux.Handle("/metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(mux, logger))
}
