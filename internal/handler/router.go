package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the HTTP surface: health and metrics at the root,
// simulation endpoints under /api/v1. CORS wraps the router itself so
// preflight requests are answered without a route match.
func NewRouter(simulations *SimulationHandler, health *HealthHandler, log zerolog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestID, RequestLogger(log), Recovery(log))

	router.HandleFunc("/health", health.Health).Methods("GET")
	router.HandleFunc("/health/ready", health.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/simulations", simulations.Simulate).Methods("POST")
	api.HandleFunc("/simulations/aggregate", simulations.Aggregate).Methods("POST")
	api.HandleFunc("/simulations/export", simulations.Export).Methods("POST")

	return CORS(router)
}
