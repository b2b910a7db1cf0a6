package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculationsTotal counts calculation requests by loan type and outcome.
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_engine_calculations_total",
			Help: "Calculation requests by loan type and status",
		},
		[]string{"loan_type", "status"},
	)

	// calculationErrors counts rejected requests by error kind.
	calculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_engine_calculation_errors_total",
			Help: "Rejected calculation requests by error kind",
		},
		[]string{"kind"},
	)

	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_engine_calculation_duration_seconds",
			Help:    "Time spent normalizing and calculating a loan",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"loan_type"},
	)
)
