package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Metrics returns a middleware that collects Prometheus metrics
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.status)

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}

// MonitorMetrics holds Prometheus metrics for the portfolio refresh daemon
type MonitorMetrics struct {
	WalletsRefreshed     prometheus.Counter
	PositionsFetched     prometheus.Counter
	RefreshErrors        prometheus.Counter
	RefreshCycleDuration prometheus.Histogram
}

// NewMonitorMetrics creates new monitor metrics
func NewMonitorMetrics() *MonitorMetrics {
	return &MonitorMetrics{
		WalletsRefreshed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_wallets_refreshed_total",
			Help: "Total number of wallet portfolios refreshed",
		}),
		PositionsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_positions_fetched_total",
			Help: "Total number of positions fetched during refresh cycles",
		}),
		RefreshErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_refresh_errors_total",
			Help: "Total number of failed wallet refreshes",
		}),
		RefreshCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_refresh_cycle_duration_seconds",
			Help:    "Time taken to refresh all tracked wallets",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
