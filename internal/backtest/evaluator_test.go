package backtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/yourusername/futures-signal/internal/models"
)

func record(prediction, target int) models.PredictionRecord {
	return models.PredictionRecord{Prediction: prediction, Target: target}
}

func TestPrecision(t *testing.T) {
	predictions := []models.PredictionRecord{
		record(1, 1),
		record(1, 0),
		record(1, 1),
		record(0, 1),
		record(0, 0),
	}

	got := Precision(predictions)
	want := 2.0 / 3.0
	if got != want {
		t.Errorf("expected precision %v, got %v", want, got)
	}
}

func TestPrecisionNoUpPredictions(t *testing.T) {
	predictions := []models.PredictionRecord{
		record(0, 1),
		record(0, 0),
	}

	if got := Precision(predictions); got != 0 {
		t.Errorf("expected precision 0 with no up predictions, got %v", got)
	}
}

func TestPrecisionEmpty(t *testing.T) {
	if got := Precision(nil); got != 0 {
		t.Errorf("expected precision 0 for empty predictions, got %v", got)
	}
}

func TestClassBalance(t *testing.T) {
	predictions := []models.PredictionRecord{
		record(1, 1),
		record(0, 1),
		record(1, 0),
		record(0, 1),
	}

	// Three up targets and one down out of four rows.
	balance := ClassBalance(predictions)
	if balance[1] != 0.75 {
		t.Errorf("expected up ratio 0.75, got %v", balance[1])
	}
	if balance[0] != 0.25 {
		t.Errorf("expected down ratio 0.25, got %v", balance[0])
	}

	counts := ClassCounts(predictions)
	if counts[1] != 3 || counts[0] != 1 {
		t.Errorf("expected counts 3/1, got %v", counts)
	}
}

func TestClassBalanceEmpty(t *testing.T) {
	if balance := ClassBalance(nil); len(balance) != 0 {
		t.Errorf("expected empty balance, got %v", balance)
	}
}

func TestRankImportances(t *testing.T) {
	importances := []models.FeatureImportance{
		{Name: "trend_2", Score: 0.1},
		{Name: "close_ratio_10", Score: 0.5},
		{Name: "rsi_5", Score: 0.3},
	}

	ranked := RankImportances(importances)
	if ranked[0].Name != "close_ratio_10" || ranked[1].Name != "rsi_5" || ranked[2].Name != "trend_2" {
		t.Errorf("unexpected ranking: %+v", ranked)
	}

	// Input order is preserved.
	if importances[0].Name != "trend_2" {
		t.Error("RankImportances mutated its input")
	}
}

func TestRankImportancesStableTies(t *testing.T) {
	importances := []models.FeatureImportance{
		{Name: "a", Score: 0.2},
		{Name: "b", Score: 0.2},
		{Name: "c", Score: 0.2},
	}

	ranked := RankImportances(importances)
	for i, name := range []string{"a", "b", "c"} {
		if ranked[i].Name != name {
			t.Errorf("tie ordering not stable: got %+v", ranked)
		}
	}
}

func TestEvaluate(t *testing.T) {
	result := &Result{
		RunID: uuid.New(),
		Predictions: []models.PredictionRecord{
			record(1, 1),
			record(1, 0),
			record(0, 0),
			record(0, 1),
		},
		Importances: []models.FeatureImportance{
			{Name: "low", Score: 0.2},
			{Name: "high", Score: 0.8},
		},
	}

	eval := Evaluate(result)
	if eval.Precision != 0.5 {
		t.Errorf("expected precision 0.5, got %v", eval.Precision)
	}
	if eval.UpPredictions != 2 || eval.TruePositives != 1 {
		t.Errorf("unexpected counts: up=%d tp=%d", eval.UpPredictions, eval.TruePositives)
	}
	if eval.ClassBalance[0] != 0.5 || eval.ClassBalance[1] != 0.5 {
		t.Errorf("unexpected class balance: %v", eval.ClassBalance)
	}
	if eval.ClassCounts[0] != 2 || eval.ClassCounts[1] != 2 {
		t.Errorf("unexpected class counts: %v", eval.ClassCounts)
	}
	if eval.Importances[0].Name != "high" {
		t.Errorf("expected importances ranked, got %+v", eval.Importances)
	}
	if eval.PredictionRows != 4 {
		t.Errorf("expected 4 prediction rows, got %d", eval.PredictionRows)
	}
}
