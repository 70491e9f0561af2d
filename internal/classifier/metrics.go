// Package classifier defines model-service client metrics.
package classifier

import "github.com/prometheus/client_golang/prometheus"

var (
	ModelFitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "model_fits_total",
		Help:      "Total number of model training calls",
	})

	ModelPredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "model_predictions_total",
		Help:      "Total number of predicted rows returned by the model service",
	})

	ModelRequestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "model_request_errors_total",
		Help:      "Total model service request failures by operation and reason",
	}, []string{"operation", "reason"})

	ModelFitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "futures_signal",
		Name:      "model_fit_duration_seconds",
		Help:      "Wall time of model training calls",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	ModelPredictLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "futures_signal",
		Name:      "model_predict_duration_seconds",
		Help:      "Wall time of model predict calls",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	PredictionCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "futures_signal",
		Name:      "prediction_cache_requests_total",
		Help:      "Prediction cache lookups by outcome",
	}, []string{"outcome"})
)

// Collectors returns every metric in this package for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		ModelFitsTotal,
		ModelPredictionsTotal,
		ModelRequestErrorsTotal,
		ModelFitDuration,
		ModelPredictLatency,
		PredictionCacheHitsTotal,
	}
}
