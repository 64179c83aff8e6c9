package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	positionsNormalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_positions_normalized_total",
		Help: "Total number of raw records normalized into canonical positions",
	})

	recordsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_records_dropped_total",
		Help: "Total number of raw records dropped as error sentinels or missing identifiers",
	})

	upstreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_upstream_errors_total",
		Help: "Total number of failed upstream position fetches",
	})
)
