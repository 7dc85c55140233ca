package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Run metrics
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Total number of backtest runs",
		},
		[]string{"status"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backtest_duration_seconds",
			Help:    "Distribution of backtest run durations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Simulation metrics
	symbolErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_symbol_errors_total",
			Help: "Total number of per-symbol simulation failures",
		},
		[]string{"category"},
	)

	dividendPayoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_dividend_payouts_total",
			Help: "Total number of dividend payouts simulated",
		},
		[]string{"symbol"},
	)

	reinvestmentsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_reinvestments_skipped_total",
			Help: "Total number of dividend reinvestments skipped",
		},
		[]string{"symbol", "reason"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(runDuration)
	prometheus.MustRegister(symbolErrorsTotal)
	prometheus.MustRegister(dividendPayoutsTotal)
	prometheus.MustRegister(reinvestmentsSkippedTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordRun records a completed backtest run with its duration
func RecordRun(status string, duration time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(duration.Seconds())
}

// RecordSymbolError records a per-symbol simulation failure
func RecordSymbolError(category string) {
	symbolErrorsTotal.WithLabelValues(category).Inc()
}

// RecordDividendPayout records one simulated dividend payout
func RecordDividendPayout(symbol string) {
	dividendPayoutsTotal.WithLabelValues(symbol).Inc()
}

// RecordSkippedReinvestment records a reinvestment that could not execute
func RecordSkippedReinvestment(symbol, reason string) {
	reinvestmentsSkippedTotal.WithLabelValues(symbol, reason).Inc()
}
