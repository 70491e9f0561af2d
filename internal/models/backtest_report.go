package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FeatureImportance pairs a predictor name with the classifier's reported
// importance score.
type FeatureImportance struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// BacktestReport is the persisted outcome of one walk-forward run.
type BacktestReport struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Symbol        string          `db:"symbol" json:"symbol" validate:"required"`
	StartDate     time.Time       `db:"start_date" json:"start_date"`
	EndDate       time.Time       `db:"end_date" json:"end_date"`
	TrainStart    int             `db:"train_start" json:"train_start"`
	TestStep      int             `db:"test_step" json:"test_step"`
	Folds         int             `db:"folds" json:"folds"`
	FailedFolds   int             `db:"failed_folds" json:"failed_folds"`
	Predictions   int             `db:"predictions" json:"predictions"`
	Precision     float64         `db:"precision" json:"precision"`
	ClassBalance  json.RawMessage `db:"class_balance" json:"class_balance"`
	Importances   json.RawMessage `db:"importances" json:"importances"`
	FeatureCount  int             `db:"feature_count" json:"feature_count"`
	ModelVersion  string          `db:"model_version" json:"model_version"`
	CompletedAt   time.Time       `db:"completed_at" json:"completed_at"`
}

// SetClassBalance serializes the per-class ratio map onto the report.
func (r *BacktestReport) SetClassBalance(balance map[int]float64) error {
	keyed := make(map[string]float64, len(balance))
	for class, ratio := range balance {
		keyed[strconv.Itoa(class)] = ratio
	}
	data, err := json.Marshal(keyed)
	if err != nil {
		return err
	}
	r.ClassBalance = data
	return nil
}

// SetImportances serializes the ranked importance list onto the report.
func (r *BacktestReport) SetImportances(ranking []FeatureImportance) error {
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	r.Importances = data
	return nil
}
