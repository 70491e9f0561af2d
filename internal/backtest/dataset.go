package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// Dataset is the model-ready view of a labeled feature frame: one row per
// trading day, feature columns in a fixed order, and a known next-day
// direction target for every row.
type Dataset struct {
	Symbol   string
	Dates    []time.Time
	Names    []string
	Features [][]float64
	Targets  []int
	Returns  []float64
}

// Rows returns the number of rows in the dataset.
func (d *Dataset) Rows() int {
	return len(d.Dates)
}

// Validate checks the dataset for shape mismatches and missing values.
// Rows handed to the classifier must be complete; missingness is resolved
// upstream when the dataset is assembled.
func (d *Dataset) Validate() error {
	n := len(d.Dates)
	if len(d.Features) != n || len(d.Targets) != n {
		return fmt.Errorf("dataset shape mismatch: %d dates, %d feature rows, %d targets",
			n, len(d.Features), len(d.Targets))
	}
	if d.Returns != nil && len(d.Returns) != n {
		return fmt.Errorf("dataset shape mismatch: %d dates, %d returns", n, len(d.Returns))
	}
	for i, row := range d.Features {
		if len(row) != len(d.Names) {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), len(d.Names))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d (%s) column %q is not finite",
					i, d.Dates[i].Format("2006-01-02"), d.Names[j])
			}
		}
	}
	for i, target := range d.Targets {
		if target != 0 && target != 1 {
			return fmt.Errorf("row %d has target %d, expected 0 or 1", i, target)
		}
	}
	for i := 1; i < n; i++ {
		if !d.Dates[i].After(d.Dates[i-1]) {
			return fmt.Errorf("dates out of order at row %d: %s follows %s: %w",
				i, d.Dates[i].Format("2006-01-02"), d.Dates[i-1].Format("2006-01-02"),
				models.ErrOutOfOrderSeries)
		}
	}
	return nil
}
