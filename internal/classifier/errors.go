// Package classifier provides clients for the model service.
package classifier

import "errors"

var (
	// ErrServiceUnavailable indicates the model service is unreachable
	ErrServiceUnavailable = errors.New("model service unavailable")

	// ErrTrainingFailed indicates the train request was rejected
	ErrTrainingFailed = errors.New("model training failed")

	// ErrInvalidPrediction indicates the prediction response is invalid
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrNotFitted indicates Predict was called before any successful Fit
	ErrNotFitted = errors.New("classifier has not been fitted")

	// ErrMissingValues indicates the feature matrix carried NaN cells the
	// model service refused
	ErrMissingValues = errors.New("feature matrix contains missing values")
)
