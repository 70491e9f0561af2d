package models

import (
	"time"
)

// Bar represents one daily OHLCV record for the futures series.
// Bars are strictly ordered by date, one per trading day.
type Bar struct {
	Date          time.Time `db:"date" json:"date" validate:"required"`
	Open          float64   `db:"open" json:"open" validate:"required,gt=0"`
	High          float64   `db:"high" json:"high" validate:"required,gt=0"`
	Low           float64   `db:"low" json:"low" validate:"required,gt=0"`
	Close         float64   `db:"close" json:"close" validate:"required,gt=0"`
	Volume        float64   `db:"volume" json:"volume" validate:"gte=0"`
	TomorrowClose *float64  `db:"tomorrow_close" json:"tomorrow_close,omitempty"`
	Target        *int      `db:"target" json:"target,omitempty"`
}

// Day returns the bar's date truncated to midnight UTC. Bars loaded from
// different sources may carry non-zero clock components; joins are by day.
func (b *Bar) Day() time.Time {
	return time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// HasTarget reports whether the next-day direction label is defined.
// The final bar of a series never has one.
func (b *Bar) HasTarget() bool {
	return b.Target != nil
}
