// Package classifier provides the cached classifier implementation.
package classifier

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/config"
)

// CachedClassifier wraps HTTPClassifier with per-row prediction caching.
// Refitting invalidates the cache: a new model may disagree with the old one
// on identical rows.
type CachedClassifier struct {
	client *HTTPClassifier
	cache  *PredictionCache
	logger *logrus.Logger
}

// NewCachedClassifier creates a new cached classifier client.
func NewCachedClassifier(cfg *config.ModelServiceConfig, featureNames []string, logger *logrus.Logger) *CachedClassifier {
	return &CachedClassifier{
		client: NewHTTPClassifier(cfg, featureNames, logger),
		cache: NewPredictionCache(
			time.Duration(cfg.CacheTTLSeconds)*time.Second,
			cfg.CacheMaxSize,
		),
		logger: logger,
	}
}

// Fit trains a fresh model and flushes stale predictions.
func (c *CachedClassifier) Fit(ctx context.Context, features [][]float64, labels []int) error {
	if err := c.client.Fit(ctx, features, labels); err != nil {
		return err
	}
	c.cache.InvalidateModel()
	return nil
}

// Predict serves rows from cache where possible and batches the remainder
// through the model service, reassembling results in input order.
func (c *CachedClassifier) Predict(ctx context.Context, features [][]float64) ([]int, error) {
	results := make([]int, len(features))
	uncachedRows := make([][]float64, 0)
	uncachedIndices := make([]int, 0)
	keys := make([]CacheKey, len(features))

	for i, row := range features {
		keys[i] = CacheKey{ModelID: c.client.ModelID(), FeatureSum: HashFeatures(row)}
		if label, ok := c.cache.Get(keys[i]); ok {
			results[i] = label
		} else {
			uncachedRows = append(uncachedRows, row)
			uncachedIndices = append(uncachedIndices, i)
		}
	}

	if len(uncachedRows) > 0 {
		c.logger.WithFields(logrus.Fields{
			"total_rows": len(features),
			"cached":     len(features) - len(uncachedRows),
			"uncached":   len(uncachedRows),
		}).Debug("Prediction with partial cache")

		fetched, err := c.client.Predict(ctx, uncachedRows)
		if err != nil {
			return nil, err
		}
		for j, idx := range uncachedIndices {
			results[idx] = fetched[j]
			c.cache.Set(keys[idx], fetched[j])
		}
	}

	return results, nil
}

// FeatureImportances returns the scores from the latest fit.
func (c *CachedClassifier) FeatureImportances() []float64 {
	return c.client.FeatureImportances()
}

// HealthCheck checks model service health.
func (c *CachedClassifier) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}
