// Package metrics provides the centralized Prometheus registry for the
// futures signal pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/futures-signal/internal/classifier"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Ingestion counter metrics
var (
	BarsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "bars_ingested_total",
		Help:      "Total number of daily bars accepted into storage, by source",
	}, []string{"source"})
	BarsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "bars_rejected_total",
		Help:      "Total number of bars dropped by data quality screening",
	})
	MacroEventsAlignedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "macro_events_aligned_total",
		Help:      "Total number of macro announcements aligned, by series",
	}, []string{"series"})
	SyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "sync_runs_total",
		Help:      "Total number of scheduled daily syncs by status",
	}, []string{"status"})
	StreamTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "stream_ticks_total",
		Help:      "Total number of live quote ticks received",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
)

// Pipeline gauge metrics
var (
	DatasetRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "futures_signal",
		Name:      "dataset_rows",
		Help:      "Complete labeled rows in the most recent dataset, by symbol",
	}, []string{"symbol"})
	DatasetColumns = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "futures_signal",
		Name:      "dataset_columns",
		Help:      "Feature columns in the most recent dataset, by symbol",
	}, []string{"symbol"})
	LatestBarAge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "futures_signal",
		Name:      "latest_bar_age_days",
		Help:      "Days since the most recent stored bar, by symbol",
	}, []string{"symbol"})
)

// Pipeline histogram metrics
var (
	FeatureDerivationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "futures_signal",
		Name:      "feature_derivation_duration_seconds",
		Help:      "Wall time of full dataset assembly",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register ingestion metrics
		registry.MustRegister(BarsIngestedTotal)
		registry.MustRegister(BarsRejectedTotal)
		registry.MustRegister(MacroEventsAlignedTotal)
		registry.MustRegister(SyncRunsTotal)
		registry.MustRegister(StreamTicksTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register pipeline metrics
		registry.MustRegister(DatasetRows)
		registry.MustRegister(DatasetColumns)
		registry.MustRegister(LatestBarAge)
		registry.MustRegister(FeatureDerivationDuration)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(FoldsCompletedTotal)
		registry.MustRegister(FoldsFailedTotal)
		registry.MustRegister(PredictionsStoredTotal)
		registry.MustRegister(BacktestPrecision)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(FoldDuration)

		// Register model service client metrics
		for _, collector := range classifier.Collectors() {
			registry.MustRegister(collector)
		}
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBarsIngested records screened bar counts from one ingestion.
func RecordBarsIngested(source string, accepted, rejected int) {
	BarsIngestedTotal.WithLabelValues(source).Add(float64(accepted))
	BarsRejectedTotal.Add(float64(rejected))
}

// RecordMacroAligned records an aligned macro series.
func RecordMacroAligned(series string, events int) {
	MacroEventsAlignedTotal.WithLabelValues(series).Add(float64(events))
}

// RecordSyncRun records a scheduled sync outcome.
// status should be one of: "success", "failure"
func RecordSyncRun(status string) {
	SyncRunsTotal.WithLabelValues(status).Inc()
}

// RecordStreamTick records a live quote tick.
func RecordStreamTick() {
	StreamTicksTotal.Inc()
}

// RecordCircuitBreakerTrip records a provider circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateDatasetShape updates the dataset size gauges after assembly.
func UpdateDatasetShape(symbol string, rows, columns int) {
	DatasetRows.WithLabelValues(symbol).Set(float64(rows))
	DatasetColumns.WithLabelValues(symbol).Set(float64(columns))
}

// UpdateLatestBarAge updates the staleness gauge for a symbol.
func UpdateLatestBarAge(symbol string, days float64) {
	LatestBarAge.WithLabelValues(symbol).Set(days)
}

// RecordFeatureDerivation records dataset assembly duration.
func RecordFeatureDerivation(durationSeconds float64) {
	FeatureDerivationDuration.Observe(durationSeconds)
}
