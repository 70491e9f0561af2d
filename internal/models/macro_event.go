package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MacroEvent represents one macroeconomic announcement (CPI print, payroll
// number, Fed rate decision) aligned to a canonical calendar date.
type MacroEvent struct {
	Series        string          `db:"series" json:"series" validate:"required"`
	Date          time.Time       `db:"date" json:"date" validate:"required"`
	Actual        decimal.Decimal `db:"actual" json:"actual"`
	Forecast      decimal.Decimal `db:"forecast" json:"forecast"`
	Previous      decimal.Decimal `db:"previous" json:"previous"`
	Change        decimal.Decimal `db:"change" json:"change"`
	DaysUntilNext *float64        `db:"days_until_next" json:"days_until_next,omitempty"`
}

// Surprise returns actual minus forecast, the conventional announcement
// surprise measure.
func (e *MacroEvent) Surprise() decimal.Decimal {
	return e.Actual.Sub(e.Forecast)
}
