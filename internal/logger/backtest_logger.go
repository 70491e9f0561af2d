// Package logger provides backtest-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for walk-forward backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStart logs the start of a walk-forward run.
func (bl *BacktestLogger) LogRunStart(runID, symbol string, totalRows, trainStart, testStep, foldCount int) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"symbol":      symbol,
		"total_rows":  totalRows,
		"train_start": trainStart,
		"test_step":   testStep,
		"fold_count":  foldCount,
	}).Info("Walk-forward run started")
}

// LogFoldCompleted logs a completed fold.
func (bl *BacktestLogger) LogFoldCompleted(runID string, foldIndex, trainRows, testRows int, durationMs float64) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"fold_index":  foldIndex,
		"train_rows":  trainRows,
		"test_rows":   testRows,
		"duration_ms": durationMs,
	}).Info("Fold completed")
}

// LogFoldFailed logs a failed fold; the run continues with the next fold.
func (bl *BacktestLogger) LogFoldFailed(runID string, foldIndex int, reason string) {
	bl.WithFields(logrus.Fields{
		"run_id":     runID,
		"fold_index": foldIndex,
		"reason":     reason,
	}).Warn("Fold failed, continuing with next fold")
}

// LogRunCompleted logs run completion with summary metrics.
func (bl *BacktestLogger) LogRunCompleted(runID string, foldsCompleted, foldsFailed, predictions int, precision float64, durationMs float64) {
	bl.WithFields(logrus.Fields{
		"run_id":          runID,
		"folds_completed": foldsCompleted,
		"folds_failed":    foldsFailed,
		"predictions":     predictions,
		"precision":       precision,
		"duration_ms":     durationMs,
	}).Info("Walk-forward run completed")
}

// LogEvaluation logs the evaluation summary for a run.
func (bl *BacktestLogger) LogEvaluation(runID string, precision float64, classBalance map[int]int, topFeature string, topScore float64) {
	bl.WithFields(logrus.Fields{
		"run_id":        runID,
		"precision":     precision,
		"class_balance": classBalance,
		"top_feature":   topFeature,
		"top_score":     topScore,
	}).Info("Backtest evaluation completed")
}
