package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/futures-signal/internal/models"
)

// Report bundles a run's result with its evaluation for output.
type Report struct {
	RunID          string                     `json:"run_id"`
	Symbol         string                     `json:"symbol"`
	ModelVersion   string                     `json:"model_version,omitempty"`
	GeneratedAt    time.Time                  `json:"generated_at"`
	StartDate      time.Time                  `json:"start_date"`
	EndDate        time.Time                  `json:"end_date"`
	TrainStart     int                        `json:"train_start"`
	TestStep       int                        `json:"test_step"`
	TotalRows      int                        `json:"total_rows"`
	FoldsTotal     int                        `json:"folds_total"`
	FoldsCompleted int                        `json:"folds_completed"`
	FoldsFailed    int                        `json:"folds_failed"`
	Predictions    int                        `json:"predictions"`
	Precision      float64                    `json:"precision"`
	UpPredictions  int                        `json:"up_predictions"`
	TruePositives  int                        `json:"true_positives"`
	ClassBalance   map[string]float64         `json:"class_balance"`
	ClassCounts    map[string]int             `json:"class_counts"`
	Importances    []models.FeatureImportance `json:"feature_importances"`
	Bootstrap      *BootstrapResult           `json:"bootstrap,omitempty"`
}

// NewReport builds a report from a run result and its evaluation.
func NewReport(result *Result, eval Evaluation, cfg Config) Report {
	balance := make(map[string]float64, len(eval.ClassBalance))
	for class, ratio := range eval.ClassBalance {
		balance[fmt.Sprintf("%d", class)] = ratio
	}
	counts := make(map[string]int, len(eval.ClassCounts))
	for class, count := range eval.ClassCounts {
		counts[fmt.Sprintf("%d", class)] = count
	}

	report := Report{
		RunID:          result.RunID.String(),
		Symbol:         result.Symbol,
		ModelVersion:   cfg.ModelVersion,
		GeneratedAt:    time.Now().UTC(),
		TrainStart:     cfg.TrainStart,
		TestStep:       cfg.TestStep,
		TotalRows:      result.TotalRows,
		FoldsTotal:     result.FoldsTotal,
		FoldsCompleted: result.FoldsCompleted,
		FoldsFailed:    result.FoldsFailed,
		Predictions:    len(result.Predictions),
		Precision:      eval.Precision,
		UpPredictions:  eval.UpPredictions,
		TruePositives:  eval.TruePositives,
		ClassBalance:   balance,
		ClassCounts:    counts,
		Importances:    eval.Importances,
	}
	if len(result.Predictions) > 0 {
		report.StartDate = result.Predictions[0].Date
		report.EndDate = result.Predictions[len(result.Predictions)-1].Date
	}
	return report
}

// ToModel converts the report into the persistable record.
func (r Report) ToModel() (*models.BacktestReport, error) {
	runID, err := uuid.Parse(r.RunID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", r.RunID, err)
	}

	record := &models.BacktestReport{
		ID:           runID,
		Symbol:       r.Symbol,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		TrainStart:   r.TrainStart,
		TestStep:     r.TestStep,
		Folds:        r.FoldsTotal,
		FailedFolds:  r.FoldsFailed,
		Predictions:  r.Predictions,
		Precision:    r.Precision,
		FeatureCount: len(r.Importances),
		ModelVersion: r.ModelVersion,
		CompletedAt:  r.GeneratedAt,
	}

	balance := make(map[int]float64, len(r.ClassBalance))
	for class, ratio := range r.ClassBalance {
		var c int
		if _, err := fmt.Sscanf(class, "%d", &c); err != nil {
			return nil, fmt.Errorf("invalid class label %q: %w", class, err)
		}
		balance[c] = ratio
	}
	if err := record.SetClassBalance(balance); err != nil {
		return nil, err
	}
	if err := record.SetImportances(r.Importances); err != nil {
		return nil, err
	}
	return record, nil
}

// GenerateConsoleReport formats the report for terminal output
func GenerateConsoleReport(report Report) string {
	var builder strings.Builder
	builder.WriteString("Walk-Forward Report\n")
	builder.WriteString("===================\n")
	builder.WriteString(fmt.Sprintf("Run: %s (%s)\n", report.RunID, report.Symbol))
	builder.WriteString(fmt.Sprintf("Folds: %d completed, %d failed of %d\n",
		report.FoldsCompleted, report.FoldsFailed, report.FoldsTotal))
	builder.WriteString(fmt.Sprintf("Out-of-sample predictions: %d\n", report.Predictions))
	builder.WriteString(fmt.Sprintf("Precision (up-signal): %.4f\n", report.Precision))
	builder.WriteString(fmt.Sprintf("Up predictions: %d (%d correct)\n",
		report.UpPredictions, report.TruePositives))
	builder.WriteString("Class balance:\n")
	for _, class := range []string{"0", "1"} {
		if ratio, ok := report.ClassBalance[class]; ok {
			builder.WriteString(fmt.Sprintf("  %s: %.4f (%d rows)\n", class, ratio, report.ClassCounts[class]))
		}
	}
	if report.Bootstrap != nil {
		builder.WriteString(fmt.Sprintf("Precision CI: [%.4f, %.4f]\n",
			report.Bootstrap.LowerBound, report.Bootstrap.UpperBound))
	}
	if len(report.Importances) > 0 {
		builder.WriteString("Top features:\n")
		top := report.Importances
		if len(top) > 10 {
			top = top[:10]
		}
		for _, imp := range top {
			builder.WriteString(fmt.Sprintf("  %-40s %.4f\n", imp.Name, imp.Score))
		}
	}
	return builder.String()
}

// WriteJSONReport writes the report as indented JSON to outputPath
func WriteJSONReport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// WriteCSVExport exports key metrics for spreadsheets
func WriteCSVExport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	csv := "metric,value\n" +
		fmt.Sprintf("precision,%.4f\n", report.Precision) +
		fmt.Sprintf("predictions,%d\n", report.Predictions) +
		fmt.Sprintf("up_predictions,%d\n", report.UpPredictions) +
		fmt.Sprintf("true_positives,%d\n", report.TruePositives) +
		fmt.Sprintf("folds_completed,%d\n", report.FoldsCompleted) +
		fmt.Sprintf("folds_failed,%d\n", report.FoldsFailed)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}
