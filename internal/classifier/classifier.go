// Package classifier provides clients for the model service that owns the
// tree-ensemble's training internals. The pipeline treats the classifier as
// an opaque fit/predict capability with per-feature importance scores.
package classifier

import "context"

// Classifier is the black-box capability the walk-forward backtester drives.
// Fit trains a fresh model on the given matrix, discarding any previous one;
// nothing incremental survives between calls.
type Classifier interface {
	Fit(ctx context.Context, features [][]float64, labels []int) error
	Predict(ctx context.Context, features [][]float64) ([]int, error)
	// FeatureImportances returns the per-feature scores reported after the
	// most recent Fit, ordered like the training columns. Nil before any fit.
	FeatureImportances() []float64
}

// TrainRequest is the payload sent to the model service's train endpoint.
type TrainRequest struct {
	ModelType    string      `json:"model_type"`
	Seed         int64       `json:"seed"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	Features     [][]float64 `json:"features"`
	Labels       []int       `json:"labels"`
}

// TrainResponse is the model service's reply to a train request.
type TrainResponse struct {
	ModelID     string    `json:"model_id"`
	Importances []float64 `json:"importances"`
}

// PredictRequest is the payload sent to the predict endpoint.
type PredictRequest struct {
	Features [][]float64 `json:"features"`
}

// PredictResponse is the model service's reply to a predict request.
type PredictResponse struct {
	Predictions []int `json:"predictions"`
}
