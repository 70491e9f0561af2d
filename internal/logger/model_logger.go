// Package logger provides model-service-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for model service operations.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model service logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogModelFit logs a completed model fit.
func (ml *ModelLogger) LogModelFit(modelType, modelID string, trainRows, featureCount int, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"model_type":    modelType,
		"model_id":      modelID,
		"train_rows":    trainRows,
		"feature_count": featureCount,
		"duration_ms":   durationMs,
	}).Info("Model fit completed")
}

// LogPredictionRequest logs a prediction request.
func (ml *ModelLogger) LogPredictionRequest(modelID string, rows int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_id":   modelID,
		"rows":       rows,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Info("Prediction request completed")
}

// LogImportances logs the feature importances returned by a fit.
func (ml *ModelLogger) LogImportances(modelID string, featureCount int, topFeature string, topScore float64) {
	ml.WithFields(logrus.Fields{
		"model_id":      modelID,
		"feature_count": featureCount,
		"top_feature":   topFeature,
		"top_score":     topScore,
	}).Debug("Feature importances received")
}

// LogModelError logs model service errors.
func (ml *ModelLogger) LogModelError(modelType, operation, errorReason string) {
	ml.WithFields(logrus.Fields{
		"model_type":   modelType,
		"operation":    operation,
		"error_reason": errorReason,
	}).Error("Model service request failed")
}
