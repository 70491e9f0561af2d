// Package classifier provides the HTTP client for the model service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/config"
)

// HTTPClassifier talks JSON over HTTP to the model service. Each Fit trains
// a brand-new model and remembers its identifier for subsequent predicts,
// so a walk-forward fold never inherits state from the previous one.
type HTTPClassifier struct {
	client       *http.Client
	baseURL      string
	modelType    string
	seed         int64
	featureNames []string
	logger       *logrus.Logger

	modelID     string
	importances []float64
}

// NewHTTPClassifier creates a classifier client from configuration.
func NewHTTPClassifier(cfg *config.ModelServiceConfig, featureNames []string, logger *logrus.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		baseURL:      cfg.HTTPAddress,
		modelType:    cfg.ModelType,
		seed:         cfg.Seed,
		featureNames: featureNames,
		logger:       logger,
	}
}

// Fit trains a fresh model on the given matrix. The previous model, if any,
// is abandoned on the service side.
func (c *HTTPClassifier) Fit(ctx context.Context, features [][]float64, labels []int) error {
	start := time.Now()

	reqBody := TrainRequest{
		ModelType:    c.modelType,
		Seed:         c.seed,
		FeatureNames: c.featureNames,
		Features:     features,
		Labels:       labels,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal train request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/models/train", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		ModelRequestErrorsTotal.WithLabelValues("train", "network").Inc()
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		ModelRequestErrorsTotal.WithLabelValues("train", "missing_values").Inc()
		return ErrMissingValues
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		ModelRequestErrorsTotal.WithLabelValues("train", "http_error").Inc()
		return fmt.Errorf("%w: status %d: %s", ErrTrainingFailed, resp.StatusCode, string(body))
	}

	var trainResp TrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&trainResp); err != nil {
		return fmt.Errorf("failed to decode train response: %w", err)
	}
	if trainResp.ModelID == "" {
		return fmt.Errorf("%w: empty model id", ErrTrainingFailed)
	}

	c.modelID = trainResp.ModelID
	c.importances = trainResp.Importances

	c.logger.WithFields(logrus.Fields{
		"model_id": trainResp.ModelID,
		"rows":     len(features),
		"duration": time.Since(start),
	}).Debug("Model trained")
	ModelFitDuration.Observe(time.Since(start).Seconds())
	ModelFitsTotal.Inc()
	return nil
}

// Predict returns directional labels for the given feature matrix using the
// most recently fitted model.
func (c *HTTPClassifier) Predict(ctx context.Context, features [][]float64) ([]int, error) {
	if c.modelID == "" {
		return nil, ErrNotFitted
	}
	start := time.Now()
	defer func() {
		ModelPredictLatency.Observe(time.Since(start).Seconds())
	}()

	jsonData, err := json.Marshal(PredictRequest{Features: features})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/models/%s/predict", c.baseURL, c.modelID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		ModelRequestErrorsTotal.WithLabelValues("predict", "network").Inc()
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		ModelRequestErrorsTotal.WithLabelValues("predict", "http_error").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidPrediction, resp.StatusCode, string(body))
	}

	var predictResp PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if len(predictResp.Predictions) != len(features) {
		return nil, fmt.Errorf("%w: got %d predictions for %d rows", ErrInvalidPrediction, len(predictResp.Predictions), len(features))
	}

	ModelPredictionsTotal.Add(float64(len(predictResp.Predictions)))
	return predictResp.Predictions, nil
}

// FeatureImportances returns the scores reported by the latest fit.
func (c *HTTPClassifier) FeatureImportances() []float64 {
	if c.importances == nil {
		return nil
	}
	out := make([]float64, len(c.importances))
	copy(out, c.importances)
	return out
}

// ModelID exposes the identifier of the most recently fitted model.
func (c *HTTPClassifier) ModelID() string {
	return c.modelID
}

// HealthCheck checks model service health
func (c *HTTPClassifier) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}
