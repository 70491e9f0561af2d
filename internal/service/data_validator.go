package service

import (
	"fmt"

	"github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/models"
)

// DataValidator screens incoming bars before they reach storage. A bar with
// an impossible shape (non-positive price, high below low) is rejected; a
// series-level problem (duplicate or out-of-order dates) is repaired where
// possible and logged.
type DataValidator struct {
	log *logger.PipelineLogger
}

// NewDataValidator creates a validator that reports issues through the
// pipeline logger.
func NewDataValidator(log *logger.PipelineLogger) *DataValidator {
	return &DataValidator{log: log}
}

// ValidateBar returns the list of violations for a single bar. An empty
// slice means the bar is acceptable.
func (v *DataValidator) ValidateBar(bar models.Bar) []string {
	var violations []string

	if bar.Date.IsZero() {
		violations = append(violations, "date is zero")
	}
	for name, price := range map[string]float64{
		"open": bar.Open, "high": bar.High, "low": bar.Low, "close": bar.Close,
	} {
		if price <= 0 {
			violations = append(violations, fmt.Sprintf("%s price %.4f is not positive", name, price))
		}
	}
	if bar.High < bar.Low {
		violations = append(violations, fmt.Sprintf("high %.4f below low %.4f", bar.High, bar.Low))
	}
	if bar.High > 0 && (bar.Open > bar.High || bar.Close > bar.High) {
		violations = append(violations, "open or close above high")
	}
	if bar.Low > 0 && (bar.Open < bar.Low || bar.Close < bar.Low) {
		violations = append(violations, "open or close below low")
	}
	if bar.Volume < 0 {
		violations = append(violations, fmt.Sprintf("volume %.2f is negative", bar.Volume))
	}

	return violations
}

// ValidateSeries screens a bar series ordered by date. Bars that fail
// ValidateBar and bars whose day duplicates the preceding accepted bar are
// dropped; each drop is logged. It returns the surviving bars and the number
// rejected, and errors only when the input dates go backwards, since that
// means the upstream loader's ordering contract is broken.
func (v *DataValidator) ValidateSeries(symbol string, bars []models.Bar) ([]models.Bar, int, error) {
	accepted := make([]models.Bar, 0, len(bars))
	rejected := 0

	for i := range bars {
		bar := bars[i]
		if violations := v.ValidateBar(bar); len(violations) > 0 {
			rejected++
			for _, violation := range violations {
				v.log.LogDataQualityIssue(symbol, "invalid_bar", i, violation)
			}
			continue
		}

		if len(accepted) > 0 {
			prev := accepted[len(accepted)-1].Day()
			day := bar.Day()
			if day.Equal(prev) {
				rejected++
				v.log.LogDataQualityIssue(symbol, "duplicate_date", i, day.Format("2006-01-02"))
				continue
			}
			if day.Before(prev) {
				return nil, rejected, fmt.Errorf("bar %d (%s) precedes %s: %w",
					i, day.Format("2006-01-02"), prev.Format("2006-01-02"),
					models.ErrOutOfOrderSeries)
			}
		}

		accepted = append(accepted, bar)
	}

	return accepted, rejected, nil
}
