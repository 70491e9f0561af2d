package backtest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// BootstrapConfig configures bootstrap resampling of a prediction set
type BootstrapConfig struct {
	Iterations      int
	ConfidenceLevel float64
	Seed            int64
}

// BootstrapResult measures how stable the run's precision is: each
// iteration resamples the out-of-sample predictions with replacement and
// recomputes precision, giving a sampling distribution instead of a single
// point estimate.
type BootstrapResult struct {
	Iterations    int       `json:"iterations"`
	MeanPrecision float64   `json:"mean_precision"`
	StdPrecision  float64   `json:"std_precision"`
	LowerBound    float64   `json:"lower_bound"`
	UpperBound    float64   `json:"upper_bound"`
	Distribution  []float64 `json:"distribution"`
}

// BootstrapPrecision estimates a confidence interval for the run's
// precision by resampling predictions with replacement.
func BootstrapPrecision(ctx context.Context, predictions []models.PredictionRecord, cfg BootstrapConfig) (BootstrapResult, error) {
	if len(predictions) == 0 {
		return BootstrapResult{}, fmt.Errorf("no predictions to resample: %w", models.ErrInsufficientData)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = 0.95
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)
	resampled := make([]models.PredictionRecord, len(predictions))

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return BootstrapResult{}, err
		}
		for j := range resampled {
			resampled[j] = predictions[rng.Intn(len(predictions))]
		}
		distribution[i] = Precision(resampled)
	}

	mean, std := meanStd(distribution)
	tail := (1.0 - cfg.ConfidenceLevel) / 2.0

	return BootstrapResult{
		Iterations:    cfg.Iterations,
		MeanPrecision: mean,
		StdPrecision:  std,
		LowerBound:    percentile(distribution, tail),
		UpperBound:    percentile(distribution, 1.0-tail),
		Distribution:  distribution,
	}, nil
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	valuesCopy := append([]float64{}, values...)
	sort.Float64s(valuesCopy)
	idx := int(math.Floor(p * float64(len(valuesCopy)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(valuesCopy) {
		idx = len(valuesCopy) - 1
	}
	return valuesCopy[idx]
}
