package backtest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/futures-signal/internal/models"
)

// stubClassifier is a scripted stand-in for the model service.
type stubClassifier struct {
	fits        int
	trainSizes  []int
	failFits    map[int]bool
	prediction  int
	importances []float64
}

func (s *stubClassifier) Fit(_ context.Context, features [][]float64, _ []int) error {
	fitIndex := s.fits
	s.fits++
	s.trainSizes = append(s.trainSizes, len(features))
	if s.failFits[fitIndex] {
		return fmt.Errorf("scripted fit failure")
	}
	return nil
}

func (s *stubClassifier) Predict(_ context.Context, features [][]float64) ([]int, error) {
	predictions := make([]int, len(features))
	for i := range predictions {
		predictions[i] = s.prediction
	}
	return predictions, nil
}

func (s *stubClassifier) FeatureImportances() []float64 {
	return s.importances
}

func makeDataset(rows int) *Dataset {
	ds := &Dataset{
		Symbol: "ES",
		Names:  []string{"close_ratio_2", "trend_2"},
	}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		ds.Dates = append(ds.Dates, base.AddDate(0, 0, i))
		ds.Features = append(ds.Features, []float64{float64(i), float64(i % 3)})
		ds.Targets = append(ds.Targets, i%2)
	}
	return ds
}

func TestBuildFoldsExactPartition(t *testing.T) {
	folds, err := BuildFolds(617, 500, 50)
	if err != nil {
		t.Fatalf("BuildFolds failed: %v", err)
	}
	if len(folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(folds))
	}

	// Test windows must tile [500, 617) exactly.
	expectedStart := 500
	for _, fold := range folds {
		if fold.TrainEnd != expectedStart {
			t.Errorf("fold %d starts at %d, expected %d", fold.Index, fold.TrainEnd, expectedStart)
		}
		expectedStart = fold.TestEnd
	}
	if expectedStart != 617 {
		t.Errorf("folds end at %d, expected 617", expectedStart)
	}

	if folds[2].TestRows() != 17 {
		t.Errorf("expected short final fold of 17 rows, got %d", folds[2].TestRows())
	}
}

func TestBuildFoldsSmallSchedule(t *testing.T) {
	folds, err := BuildFolds(5, 3, 1)
	if err != nil {
		t.Fatalf("BuildFolds failed: %v", err)
	}
	if len(folds) != 2 {
		t.Fatalf("expected 2 folds, got %d", len(folds))
	}
	if folds[0].TrainEnd != 3 || folds[0].TestEnd != 4 {
		t.Errorf("unexpected first fold: %+v", folds[0])
	}
	if folds[1].TrainEnd != 4 || folds[1].TestEnd != 5 {
		t.Errorf("unexpected second fold: %+v", folds[1])
	}
}

func TestBuildFoldsInsufficientData(t *testing.T) {
	_, err := BuildFolds(500, 500, 50)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBuildFoldsInvalidParameters(t *testing.T) {
	if _, err := BuildFolds(100, 0, 10); err == nil {
		t.Error("expected error for zero train start")
	}
	if _, err := BuildFolds(100, 50, 0); err == nil {
		t.Error("expected error for zero test step")
	}
}

func TestEngineRefitsEveryFold(t *testing.T) {
	ds := makeDataset(10)
	model := &stubClassifier{prediction: 1, importances: []float64{0.7, 0.3}}

	engine, err := NewEngine(Config{Symbol: "ES", TrainStart: 4, TestStep: 2}, model, logrus.New())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	result, err := engine.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if model.fits != 3 {
		t.Errorf("expected 3 fits, got %d", model.fits)
	}
	// Expanding window: each fold trains on everything before it.
	expectedTrain := []int{4, 6, 8}
	for i, size := range model.trainSizes {
		if size != expectedTrain[i] {
			t.Errorf("fit %d trained on %d rows, expected %d", i, size, expectedTrain[i])
		}
	}

	if len(result.Predictions) != 6 {
		t.Fatalf("expected 6 predictions, got %d", len(result.Predictions))
	}
	for i, p := range result.Predictions {
		row := 4 + i
		if !p.Date.Equal(ds.Dates[row]) {
			t.Errorf("prediction %d carries date %v, expected %v", i, p.Date, ds.Dates[row])
		}
		if p.Target != ds.Targets[row] {
			t.Errorf("prediction %d carries target %d, expected %d", i, p.Target, ds.Targets[row])
		}
		if p.RunID != result.RunID {
			t.Errorf("prediction %d carries run id %v, expected %v", i, p.RunID, result.RunID)
		}
	}

	if len(result.Importances) != 2 {
		t.Fatalf("expected importances for 2 features, got %d", len(result.Importances))
	}
	if result.Importances[0].Name != "close_ratio_2" || result.Importances[0].Score != 0.7 {
		t.Errorf("unexpected first importance: %+v", result.Importances[0])
	}
}

func TestEngineFoldFailureIsolation(t *testing.T) {
	ds := makeDataset(10)
	model := &stubClassifier{
		prediction:  1,
		importances: []float64{0.5, 0.5},
		failFits:    map[int]bool{1: true},
	}

	engine, err := NewEngine(Config{Symbol: "ES", TrainStart: 4, TestStep: 2}, model, logrus.New())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	result, err := engine.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FoldsFailed != 1 {
		t.Errorf("expected 1 failed fold, got %d", result.FoldsFailed)
	}
	if result.FoldsCompleted != 2 {
		t.Errorf("expected 2 completed folds, got %d", result.FoldsCompleted)
	}
	// The failed fold's test window [6, 8) produced no predictions.
	if len(result.Predictions) != 4 {
		t.Fatalf("expected 4 predictions, got %d", len(result.Predictions))
	}
	for _, p := range result.Predictions {
		if p.FoldIndex == 1 {
			t.Errorf("prediction from failed fold 1 at %v", p.Date)
		}
	}
}

func TestEngineAllFoldsFailed(t *testing.T) {
	ds := makeDataset(10)
	model := &stubClassifier{
		prediction: 1,
		failFits:   map[int]bool{0: true, 1: true, 2: true},
	}

	engine, err := NewEngine(Config{Symbol: "ES", TrainStart: 4, TestStep: 2}, model, logrus.New())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if _, err := engine.Run(context.Background(), ds); err == nil {
		t.Fatal("expected error when every fold fails")
	}
}

func TestEngineRejectsInvalidDataset(t *testing.T) {
	ds := makeDataset(10)
	ds.Targets[3] = 7

	model := &stubClassifier{prediction: 1}
	engine, err := NewEngine(Config{Symbol: "ES", TrainStart: 4, TestStep: 2}, model, logrus.New())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if _, err := engine.Run(context.Background(), ds); err == nil {
		t.Fatal("expected error for invalid target")
	}
}

func TestDatasetValidateOutOfOrderDates(t *testing.T) {
	ds := makeDataset(5)
	ds.Dates[2] = ds.Dates[0]

	if err := ds.Validate(); !errors.Is(err, models.ErrOutOfOrderSeries) {
		t.Fatalf("expected ErrOutOfOrderSeries, got %v", err)
	}
}
