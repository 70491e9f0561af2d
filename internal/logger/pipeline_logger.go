// Package logger provides data pipeline logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for data ingestion and
// feature derivation.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogBarsIngested logs a completed price bar ingestion.
func (pl *PipelineLogger) LogBarsIngested(symbol, source string, rows int, firstDate, lastDate time.Time) {
	pl.WithFields(logrus.Fields{
		"symbol":     symbol,
		"source":     source,
		"rows":       rows,
		"first_date": firstDate.Format("2006-01-02"),
		"last_date":  lastDate.Format("2006-01-02"),
	}).Info("Price bars ingested")
}

// LogMacroAligned logs a macro announcement table aligned onto the trading calendar.
func (pl *PipelineLogger) LogMacroAligned(series string, announcements, malformedDropped int) {
	pl.WithFields(logrus.Fields{
		"series":            series,
		"announcements":     announcements,
		"malformed_dropped": malformedDropped,
	}).Info("Macro series aligned")
}

// LogFeaturesDerived logs a completed feature derivation pass.
func (pl *PipelineLogger) LogFeaturesDerived(symbol string, rows, columns, completeRows int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"symbol":        symbol,
		"rows":          rows,
		"columns":       columns,
		"complete_rows": completeRows,
		"duration_ms":   durationMs,
	}).Info("Feature derivation completed")
}

// LogDataQualityIssue logs a data quality violation found during validation.
func (pl *PipelineLogger) LogDataQualityIssue(symbol, issue string, row int, detail string) {
	pl.WithFields(logrus.Fields{
		"symbol": symbol,
		"issue":  issue,
		"row":    row,
		"detail": detail,
	}).Warn("Data quality issue detected")
}
