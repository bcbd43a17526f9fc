package pager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pageRequests counts RequestPage calls by outcome
	// (skipped, loaded, stale, network, malformed, target_missing, error).
	pageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_pager_requests_total",
			Help: "Total page requests issued by the pagination controller by outcome",
		},
		[]string{"outcome"},
	)

	fetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "explorer_pager_fetch_duration_seconds",
			Help:    "Duration of table-data fetches issued by the pagination controller",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// staleResponses counts responses dropped because a newer request was issued.
	staleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_pager_stale_responses_total",
			Help: "Total table-data responses discarded because a newer request superseded them",
		},
	)
)
