package features

import (
	"math"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// DefaultHorizons are the rolling window lengths used when the caller does
// not supply its own.
var DefaultHorizons = []int{2, 5, 10, 15, 20}

// technicalKinds lists the per-horizon predictor families in column order.
var technicalKinds = []Kind{
	KindCloseRatio,
	KindTrend,
	KindVolatility,
	KindMomentum,
	KindEMA,
	KindRSI,
	KindBollingerUpper,
	KindBollingerLower,
	KindCumulativeReturn,
}

// TechnicalResult carries the derived frame together with the keys it added.
// The frame's rows are the input rows minus those where every horizon
// predictor came out missing.
type TechnicalResult struct {
	Frame *Frame
	Keys  []Key
}

// DeriveTechnical computes the multi-horizon rolling predictors over the bar
// series. Every statistic uses only data up to and including the current row;
// Trend additionally shifts the direction labels by one so the current row's
// own label never leaks into its predictors.
//
// Horizons longer than the series are skipped without error: the caller
// simply receives fewer predictors. After all horizons are derived, rows
// where every horizon predictor is missing are dropped; rows that are only
// partially missing are kept for the classifier to handle.
func DeriveTechnical(bars []models.Bar, horizons []int) (*TechnicalResult, error) {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}

	n := len(bars)
	if n == 0 {
		return &TechnicalResult{Frame: NewFrame(nil)}, nil
	}
	dates := make([]time.Time, n)
	closes := make([]float64, n)
	for i, b := range bars {
		dates[i] = b.Day()
		closes[i] = b.Close
	}

	// Direction labels shifted by one row. The unlabeled final row and the
	// first row (no prior label) are NaN and poison any window they enter,
	// matching the rolling semantics below.
	shiftedTargets := make([]float64, n)
	shiftedTargets[0] = math.NaN()
	for i := 1; i < n; i++ {
		if bars[i-1].Target != nil {
			shiftedTargets[i] = float64(*bars[i-1].Target)
		} else {
			shiftedTargets[i] = math.NaN()
		}
	}

	returns := pctChange(closes)
	gains, losses := priceDeltas(closes)

	frame := NewFrame(dates)
	var keys []Key
	for _, h := range horizons {
		if h > n {
			continue
		}

		mean := rollingMean(closes, h)
		std := rollingStd(closes, h)

		cols := map[Kind][]float64{
			KindCloseRatio:       ratio(closes, mean),
			KindTrend:            rollingSum(shiftedTargets, h),
			KindVolatility:       std,
			KindMomentum:         momentum(closes, h),
			KindEMA:              ema(closes, h),
			KindRSI:              rsi(gains, losses, h),
			KindBollingerUpper:   bollinger(mean, std, 2),
			KindBollingerLower:   bollinger(mean, std, -2),
			KindCumulativeReturn: rollingSum(returns, h),
		}

		for _, kind := range technicalKinds {
			key := Key{Kind: kind, Horizon: h}
			var err error
			frame, err = frame.WithColumn(key, cols[kind])
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
	}

	kept := frame.RowsWithAnyValue(keys)
	if len(keys) == 0 {
		// No horizon fit the series; nothing to drop.
		kept = allRows(n)
	}
	frame, err := frame.Select(kept)
	if err != nil {
		return nil, err
	}
	return &TechnicalResult{Frame: frame, Keys: keys}, nil
}

// rollingMean computes the mean of the window of size h ending at each row,
// inclusive. Rows before the window fills, or windows containing NaN, are NaN.
func rollingMean(values []float64, h int) []float64 {
	return rollingApply(values, h, func(window []float64) float64 {
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		return sum / float64(h)
	})
}

// rollingSum computes the sum of the trailing window of size h.
func rollingSum(values []float64, h int) []float64 {
	return rollingApply(values, h, func(window []float64) float64 {
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		return sum
	})
}

// rollingStd computes the sample standard deviation of the trailing window.
func rollingStd(values []float64, h int) []float64 {
	return rollingApply(values, h, func(window []float64) float64 {
		if h < 2 {
			return math.NaN()
		}
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(h)
		ss := 0.0
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		return math.Sqrt(ss / float64(h-1))
	})
}

func rollingApply(values []float64, h int, fn func([]float64) float64) []float64 {
	out := nanSlice(len(values))
	for t := h - 1; t < len(values); t++ {
		window := values[t-h+1 : t+1]
		if hasNaN(window) {
			continue
		}
		out[t] = fn(window)
	}
	return out
}

// ema computes the recursively smoothed exponential mean with span h
// (alpha = 2/(h+1)), seeded at the first observation. No look-ahead.
func ema(values []float64, h int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(h) + 1.0)
	out[0] = values[0]
	for t := 1; t < len(values); t++ {
		out[t] = alpha*values[t] + (1-alpha)*out[t-1]
	}
	return out
}

// momentum is the close-price change over h rows.
func momentum(closes []float64, h int) []float64 {
	out := nanSlice(len(closes))
	for t := h; t < len(closes); t++ {
		out[t] = closes[t] - closes[t-h]
	}
	return out
}

// pctChange is the one-row fractional price change, NaN at the first row.
func pctChange(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for t := 1; t < len(closes); t++ {
		if closes[t-1] != 0 {
			out[t] = (closes[t] - closes[t-1]) / closes[t-1]
		}
	}
	return out
}

// priceDeltas splits one-row close changes into gain and loss magnitudes.
func priceDeltas(closes []float64) (gains, losses []float64) {
	gains = nanSlice(len(closes))
	losses = nanSlice(len(closes))
	for t := 1; t < len(closes); t++ {
		delta := closes[t] - closes[t-1]
		if delta > 0 {
			gains[t], losses[t] = delta, 0
		} else {
			gains[t], losses[t] = 0, -delta
		}
	}
	return gains, losses
}

// rsi computes the relative strength index over the trailing window. A zero
// average loss with positive gains is clamped to 100 rather than surfacing
// the infinite relative strength; a window with neither gains nor losses is
// treated as missing.
func rsi(gains, losses []float64, h int) []float64 {
	avgGain := rollingMean(gains, h)
	avgLoss := rollingMean(losses, h)
	out := nanSlice(len(gains))
	for t := range out {
		g, l := avgGain[t], avgLoss[t]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			if g > 0 {
				out[t] = 100
			}
			continue
		}
		rs := g / l
		out[t] = 100 - 100/(1+rs)
	}
	return out
}

// bollinger shifts the rolling mean by width standard deviations.
func bollinger(mean, std []float64, width float64) []float64 {
	out := nanSlice(len(mean))
	for t := range mean {
		out[t] = mean[t] + width*std[t]
	}
	return out
}

func ratio(num, den []float64) []float64 {
	out := nanSlice(len(num))
	for t := range num {
		if den[t] != 0 {
			out[t] = num[t] / den[t]
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
