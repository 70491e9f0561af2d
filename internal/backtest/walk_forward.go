package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/futures-signal/internal/classifier"
	"github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/models"
)

// Fold is one step of the expanding walk-forward schedule. Training rows
// are [0, TrainEnd) and test rows are [TrainEnd, TestEnd); the train window
// grows with every fold while the test windows tile the evaluated region
// exactly once.
type Fold struct {
	Index    int
	TrainEnd int
	TestEnd  int
}

// TrainRows returns the number of training rows for this fold.
func (f Fold) TrainRows() int { return f.TrainEnd }

// TestRows returns the number of test rows for this fold.
func (f Fold) TestRows() int { return f.TestEnd - f.TrainEnd }

// BuildFolds computes the expanding-window schedule over a dataset of the
// given length. The test windows partition [trainStart, rows) exactly: no
// row is predicted twice and none is skipped. The last fold may be shorter
// than testStep.
func BuildFolds(rows, trainStart, testStep int) ([]Fold, error) {
	if trainStart <= 0 {
		return nil, fmt.Errorf("train start must be positive, got %d", trainStart)
	}
	if testStep <= 0 {
		return nil, fmt.Errorf("test step must be positive, got %d", testStep)
	}
	if rows <= trainStart {
		return nil, fmt.Errorf("dataset has %d rows, need more than %d: %w",
			rows, trainStart, models.ErrInsufficientData)
	}

	folds := make([]Fold, 0, (rows-trainStart+testStep-1)/testStep)
	for begin := trainStart; begin < rows; begin += testStep {
		end := begin + testStep
		if end > rows {
			end = rows
		}
		folds = append(folds, Fold{Index: len(folds), TrainEnd: begin, TestEnd: end})
	}
	return folds, nil
}

// Result holds everything a walk-forward run produced.
type Result struct {
	RunID          uuid.UUID
	Symbol         string
	TotalRows      int
	FoldsTotal     int
	FoldsCompleted int
	FoldsFailed    int
	Predictions    []models.PredictionRecord
	Importances    []models.FeatureImportance
	Duration       time.Duration
}

// Engine drives the walk-forward loop: refit the classifier on each
// expanding train window, predict the following test window, and collect
// out-of-sample predictions. A fold that fails is logged and skipped; the
// run carries on with the next fold.
type Engine struct {
	cfg   Config
	model classifier.Classifier
	log   *logger.BacktestLogger
}

// NewEngine creates a walk-forward engine.
func NewEngine(cfg Config, model classifier.Classifier, baseLogger *logrus.Logger) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:   cfg,
		model: model,
		log:   logger.NewBacktestLogger(baseLogger),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run executes the full walk-forward schedule over the dataset.
func (e *Engine) Run(ctx context.Context, ds *Dataset) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	folds, err := BuildFolds(ds.Rows(), e.cfg.TrainStart, e.cfg.TestStep)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	started := time.Now()
	result := &Result{
		RunID:      runID,
		Symbol:     ds.Symbol,
		TotalRows:  ds.Rows(),
		FoldsTotal: len(folds),
	}

	e.log.LogRunStart(runID.String(), ds.Symbol, ds.Rows(), e.cfg.TrainStart, e.cfg.TestStep, len(folds))

	importanceSums := make([]float64, len(ds.Names))
	importanceFolds := 0

	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("walk-forward run cancelled at fold %d: %w", fold.Index, err)
		}

		foldStart := time.Now()
		predictions, importances, err := e.runFold(ctx, runID, ds, fold)
		if err != nil {
			result.FoldsFailed++
			e.log.LogFoldFailed(runID.String(), fold.Index, err.Error())
			continue
		}

		result.FoldsCompleted++
		result.Predictions = append(result.Predictions, predictions...)
		if len(importances) == len(importanceSums) {
			for i, score := range importances {
				importanceSums[i] += score
			}
			importanceFolds++
		}

		e.log.LogFoldCompleted(runID.String(), fold.Index, fold.TrainRows(), fold.TestRows(),
			float64(time.Since(foldStart).Milliseconds()))
	}

	if result.FoldsCompleted == 0 {
		return result, fmt.Errorf("all %d folds failed", len(folds))
	}

	if importanceFolds > 0 {
		result.Importances = make([]models.FeatureImportance, len(ds.Names))
		for i, name := range ds.Names {
			result.Importances[i] = models.FeatureImportance{
				Name:  name,
				Score: importanceSums[i] / float64(importanceFolds),
			}
		}
	}

	result.Duration = time.Since(started)
	e.log.LogRunCompleted(runID.String(), result.FoldsCompleted, result.FoldsFailed,
		len(result.Predictions), Precision(result.Predictions), float64(result.Duration.Milliseconds()))

	return result, nil
}

// runFold refits the classifier on the fold's train window and predicts its
// test window.
func (e *Engine) runFold(ctx context.Context, runID uuid.UUID, ds *Dataset, fold Fold) ([]models.PredictionRecord, []float64, error) {
	trainX := ds.Features[:fold.TrainEnd]
	trainY := ds.Targets[:fold.TrainEnd]
	testX := ds.Features[fold.TrainEnd:fold.TestEnd]

	if err := e.model.Fit(ctx, trainX, trainY); err != nil {
		return nil, nil, fmt.Errorf("fit failed: %w", err)
	}

	predicted, err := e.model.Predict(ctx, testX)
	if err != nil {
		return nil, nil, fmt.Errorf("predict failed: %w", err)
	}
	if len(predicted) != len(testX) {
		return nil, nil, fmt.Errorf("predicted %d rows for %d test rows: %w",
			len(predicted), len(testX), classifier.ErrInvalidPrediction)
	}

	records := make([]models.PredictionRecord, len(predicted))
	for i, p := range predicted {
		row := fold.TrainEnd + i
		records[i] = models.PredictionRecord{
			RunID:      runID,
			Date:       ds.Dates[row],
			Target:     ds.Targets[row],
			Prediction: p,
			FoldIndex:  fold.Index,
		}
	}

	return records, e.model.FeatureImportances(), nil
}
