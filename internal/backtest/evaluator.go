package backtest

import (
	"sort"

	"github.com/yourusername/futures-signal/internal/models"
)

// Evaluation summarizes a walk-forward run: how trustworthy an "up" signal
// is, whether the labels were skewed enough to make raw accuracy
// misleading, and which inputs the model leaned on.
type Evaluation struct {
	Precision      float64
	UpPredictions  int
	TruePositives  int
	ClassBalance   map[int]float64
	ClassCounts    map[int]int
	Importances    []models.FeatureImportance
	PredictionRows int
}

// Precision computes the precision of the up-signal: of the days predicted
// up, the fraction that actually closed up. Returns 0 when the model never
// predicted up.
func Precision(predictions []models.PredictionRecord) float64 {
	upPredicted := 0
	truePositives := 0
	for _, p := range predictions {
		if p.Prediction != 1 {
			continue
		}
		upPredicted++
		if p.Target == 1 {
			truePositives++
		}
	}
	if upPredicted == 0 {
		return 0
	}
	return float64(truePositives) / float64(upPredicted)
}

// ClassCounts counts how often each target class appears among the
// evaluated rows.
func ClassCounts(predictions []models.PredictionRecord) map[int]int {
	counts := make(map[int]int)
	for _, p := range predictions {
		counts[p.Target]++
	}
	return counts
}

// ClassBalance returns the fraction of evaluated rows in each target class.
// A heavily skewed balance means precision must be read against the base
// rate.
func ClassBalance(predictions []models.PredictionRecord) map[int]float64 {
	counts := ClassCounts(predictions)
	balance := make(map[int]float64, len(counts))
	for class, count := range counts {
		balance[class] = float64(count) / float64(len(predictions))
	}
	return balance
}

// RankImportances returns the importances sorted by descending score.
// Ties keep the original feature order so ranking is deterministic.
func RankImportances(importances []models.FeatureImportance) []models.FeatureImportance {
	ranked := make([]models.FeatureImportance, len(importances))
	copy(ranked, importances)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Evaluate computes the full evaluation of a walk-forward result.
func Evaluate(result *Result) Evaluation {
	eval := Evaluation{
		Precision:      Precision(result.Predictions),
		ClassBalance:   ClassBalance(result.Predictions),
		ClassCounts:    ClassCounts(result.Predictions),
		Importances:    RankImportances(result.Importances),
		PredictionRows: len(result.Predictions),
	}
	for _, p := range result.Predictions {
		if p.Prediction == 1 {
			eval.UpPredictions++
			if p.Target == 1 {
				eval.TruePositives++
			}
		}
	}
	return eval
}
