// Package features derives the predictor columns the classifier consumes:
// calendar encodings, multi-horizon technical statistics, and aligned
// macroeconomic announcement values.
package features

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies a family of predictors.
type Kind string

// Technical predictor kinds, one column per (kind, horizon).
const (
	KindCloseRatio       Kind = "Close_Ratio"
	KindTrend            Kind = "Trend"
	KindVolatility       Kind = "Volatility"
	KindMomentum         Kind = "Momentum"
	KindEMA              Kind = "EMA"
	KindRSI              Kind = "RSI"
	KindBollingerUpper   Kind = "Bollinger_Upper"
	KindBollingerLower   Kind = "Bollinger_Lower"
	KindCumulativeReturn Kind = "Cumulative_Return"
)

// Key identifies a single predictor column. Horizon is zero for columns that
// carry no rolling window (calendar and macro predictors).
type Key struct {
	Kind    Kind
	Horizon int
}

// Name renders the key as the predictor name used at the serialization
// boundary (exports, model requests, reports).
func (k Key) Name() string {
	if k.Horizon == 0 {
		return string(k.Kind)
	}
	return fmt.Sprintf("%s_%d", k.Kind, k.Horizon)
}

// Frame is an immutable date-indexed collection of predictor columns.
// Missing values are NaN. Frames are merged by explicit date join, never by
// row position.
type Frame struct {
	dates []time.Time
	keys  []Key
	cols  map[Key][]float64
}

// NewFrame creates an empty frame over the given dates. Dates are normalized
// to midnight UTC so joins across sources of differing provenance line up.
func NewFrame(dates []time.Time) *Frame {
	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = day(d)
	}
	return &Frame{
		dates: normalized,
		cols:  make(map[Key][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.dates)
}

// Dates returns the frame's date index.
func (f *Frame) Dates() []time.Time {
	out := make([]time.Time, len(f.dates))
	copy(out, f.dates)
	return out
}

// Keys returns the predictor keys in insertion order.
func (f *Frame) Keys() []Key {
	out := make([]Key, len(f.keys))
	copy(out, f.keys)
	return out
}

// Names returns the predictor names in insertion order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.keys))
	for i, k := range f.keys {
		names[i] = k.Name()
	}
	return names
}

// Column returns the values for a predictor, aligned with Dates.
func (f *Frame) Column(key Key) ([]float64, bool) {
	col, ok := f.cols[key]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Value returns the cell at (row, key), NaN when the column is absent.
func (f *Frame) Value(row int, key Key) float64 {
	col, ok := f.cols[key]
	if !ok || row < 0 || row >= len(col) {
		return math.NaN()
	}
	return col[row]
}

// Row flattens one row into a feature vector ordered by the given keys.
func (f *Frame) Row(row int, keys []Key) []float64 {
	vec := make([]float64, len(keys))
	for i, k := range keys {
		vec[i] = f.Value(row, k)
	}
	return vec
}

// WithColumn returns a new frame that additionally carries the column.
// The receiver is not modified; existing columns are shared, not copied.
func (f *Frame) WithColumn(key Key, values []float64) (*Frame, error) {
	if len(values) != len(f.dates) {
		return nil, fmt.Errorf("column %s has %d values, frame has %d rows", key.Name(), len(values), len(f.dates))
	}
	if _, exists := f.cols[key]; exists {
		return nil, fmt.Errorf("column %s already present", key.Name())
	}
	next := &Frame{
		dates: f.dates,
		keys:  append(append([]Key{}, f.keys...), key),
		cols:  make(map[Key][]float64, len(f.cols)+1),
	}
	for k, v := range f.cols {
		next.cols[k] = v
	}
	next.cols[key] = values
	return next, nil
}

// Join left-merges other onto the receiver by exact date equality. Rows of
// the receiver with no matching date in other receive NaN for every joined
// column. There is no nearest-date fallback.
func (f *Frame) Join(other *Frame) (*Frame, error) {
	byDate := make(map[time.Time]int, other.Len())
	for i, d := range other.dates {
		byDate[d] = i
	}

	joined := f
	for _, key := range other.keys {
		src := other.cols[key]
		col := make([]float64, len(f.dates))
		for i, d := range f.dates {
			if j, ok := byDate[d]; ok {
				col[i] = src[j]
			} else {
				col[i] = math.NaN()
			}
		}
		var err error
		joined, err = joined.WithColumn(key, col)
		if err != nil {
			return nil, err
		}
	}
	return joined, nil
}

// Select returns a new frame containing only the given rows, in order.
func (f *Frame) Select(rows []int) (*Frame, error) {
	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		if r < 0 || r >= len(f.dates) {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, len(f.dates))
		}
		dates[i] = f.dates[r]
	}
	next := &Frame{
		dates: dates,
		keys:  append([]Key{}, f.keys...),
		cols:  make(map[Key][]float64, len(f.cols)),
	}
	for k, src := range f.cols {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		next.cols[k] = col
	}
	return next, nil
}

// FillMissing returns a new frame where NaN cells of the given columns are
// replaced by value. Used by callers that zero-fill sparse macro columns.
func (f *Frame) FillMissing(keys []Key, value float64) *Frame {
	next := &Frame{
		dates: f.dates,
		keys:  append([]Key{}, f.keys...),
		cols:  make(map[Key][]float64, len(f.cols)),
	}
	fill := make(map[Key]bool, len(keys))
	for _, k := range keys {
		fill[k] = true
	}
	for k, src := range f.cols {
		if !fill[k] {
			next.cols[k] = src
			continue
		}
		col := make([]float64, len(src))
		for i, v := range src {
			if math.IsNaN(v) {
				col[i] = value
			} else {
				col[i] = v
			}
		}
		next.cols[k] = col
	}
	return next
}

// RowsWithAnyValue returns indices of rows where at least one of the given
// columns is defined. Rows where every column is NaN are omitted.
func (f *Frame) RowsWithAnyValue(keys []Key) []int {
	rows := make([]int, 0, len(f.dates))
	for i := range f.dates {
		for _, k := range keys {
			if !math.IsNaN(f.Value(i, k)) {
				rows = append(rows, i)
				break
			}
		}
	}
	return rows
}

// RowComplete reports whether every one of the given columns is defined at
// the row. Training folds exclude incomplete rows.
func (f *Frame) RowComplete(row int, keys []Key) bool {
	for _, k := range keys {
		if math.IsNaN(f.Value(row, k)) {
			return false
		}
	}
	return true
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
