package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values used with the counters below.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusError   = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// SimulationsTotal counts simulation runs by outcome.
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odledger_simulations_total",
			Help: "Simulation runs by outcome.",
		},
		[]string{"status"},
	)

	// SimulationDuration observes end-to-end simulation latency.
	SimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "odledger_simulation_duration_seconds",
			Help:    "Time spent serving one simulation run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LedgerRowsEmitted observes how many rows each run produces.
	LedgerRowsEmitted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "odledger_ledger_rows_emitted",
			Help:    "Ledger rows emitted per simulation.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// CacheRequests counts result cache lookups by outcome.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odledger_cache_requests_total",
			Help: "Result cache lookups by outcome.",
		},
		[]string{"result"},
	)

	// ExportsTotal counts rendered exports by format.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odledger_exports_total",
			Help: "Exports rendered by format.",
		},
		[]string{"format"},
	)
)
