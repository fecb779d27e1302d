package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total number of RPC requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_assistant_rpc_requests_total",
			Help: "Total number of RPC requests",
		},
		[]string{"method", "code"},
	)

	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "expense_assistant_rpc_duration_seconds",
			Help:    "RPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ActiveRequests tracks currently active requests
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "expense_assistant_rpc_active_requests",
			Help: "Number of active RPC requests",
		},
		[]string{"method"},
	)

	// ExtractionsTotal counts finished extractions by outcome and final state.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_assistant_extractions_total",
			Help: "Extractions by outcome and UI state",
		},
		[]string{"outcome", "state"},
	)

	// ModelFailuresTotal counts model call failures by error kind.
	ModelFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_assistant_model_failures_total",
			Help: "Language model failures by kind",
		},
		[]string{"kind"},
	)

	// ModelDuration tracks the language model round trip.
	ModelDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "expense_assistant_model_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
	)

	// FieldBackfillsTotal counts fields filled by the local extractors.
	FieldBackfillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_assistant_field_backfills_total",
			Help: "Fields the local extractors supplied",
		},
		[]string{"field"},
	)

	// StaleResultsTotal counts extractions discarded because a newer one superseded them.
	StaleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expense_assistant_stale_results_total",
			Help: "Extraction results dropped as stale",
		},
	)

	// PublishTotal counts event publish attempts by result.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_assistant_events_published_total",
			Help: "Expense events published by result",
		},
		[]string{"result"},
	)
)
