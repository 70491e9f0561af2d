// Package metrics defines walk-forward backtest metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "backtest_runs_total",
		Help:      "Total number of walk-forward runs by status",
	}, []string{"status"})
	FoldsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "folds_completed_total",
		Help:      "Total number of completed walk-forward folds",
	})
	FoldsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "folds_failed_total",
		Help:      "Total number of failed walk-forward folds",
	})
	PredictionsStoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "predictions_stored_total",
		Help:      "Total number of out-of-sample predictions persisted",
	})
)

// Backtest gauge vectors
var (
	BacktestPrecision = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "futures_signal",
		Name:      "backtest_precision",
		Help:      "Up-signal precision of the most recent walk-forward run, by symbol",
	}, []string{"symbol"})
)

// Backtest histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "futures_signal",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of walk-forward runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	FoldDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "futures_signal",
		Name:      "fold_duration_seconds",
		Help:      "Duration of a single fold's fit and predict in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// RecordBacktestRun records a walk-forward run outcome.
// status should be one of: "success", "failure"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordFoldOutcome adds one run's fold counts.
func RecordFoldOutcome(completed, failed int) {
	FoldsCompletedTotal.Add(float64(completed))
	FoldsFailedTotal.Add(float64(failed))
}

// RecordPredictionsStored adds persisted prediction rows.
func RecordPredictionsStored(rows int) {
	PredictionsStoredTotal.Add(float64(rows))
}

// UpdateBacktestPrecision updates the latest precision gauge for a symbol.
func UpdateBacktestPrecision(symbol string, precision float64) {
	BacktestPrecision.WithLabelValues(symbol).Set(precision)
}
