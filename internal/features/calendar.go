package features

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// Calendar predictor kinds. Cyclical variables get a sin/cos pair so the
// classifier never sees the wrap-around discontinuity of a raw ordinal.
const (
	KindDayOfWeek    Kind = "day_of_week"
	KindDayOfMonth   Kind = "day_of_month"
	KindWeekOfYear   Kind = "week_of_year"
	KindMonth        Kind = "month"
	KindYear         Kind = "year"
	KindQuarter      Kind = "quarter"
	KindIsMonthEnd   Kind = "is_month_end"
	KindIsMonthStart Kind = "is_month_start"
	KindDayOfWeekSin Kind = "day_of_week_sin"
	KindDayOfWeekCos Kind = "day_of_week_cos"
	KindMonthSin     Kind = "month_sin"
	KindMonthCos     Kind = "month_cos"
)

// CalendarKeys is the ordered list of the 12 calendar predictors.
var CalendarKeys = []Key{
	{Kind: KindDayOfWeek},
	{Kind: KindDayOfMonth},
	{Kind: KindWeekOfYear},
	{Kind: KindMonth},
	{Kind: KindYear},
	{Kind: KindQuarter},
	{Kind: KindIsMonthEnd},
	{Kind: KindIsMonthStart},
	{Kind: KindDayOfWeekSin},
	{Kind: KindDayOfWeekCos},
	{Kind: KindMonthSin},
	{Kind: KindMonthCos},
}

// DeriveCalendar expands each date into the 12 calendar predictors. No rows
// are dropped. A zero-value date cannot be expanded and fails the whole
// derivation, mirroring an unparseable date field upstream.
func DeriveCalendar(dates []time.Time) (*Frame, error) {
	n := len(dates)
	cols := make(map[Kind][]float64, len(CalendarKeys))
	for _, k := range CalendarKeys {
		cols[k.Kind] = make([]float64, n)
	}

	for i, d := range dates {
		if d.IsZero() {
			return nil, fmt.Errorf("row %d: %w", i, models.ErrUnparseableDate)
		}

		dow := float64((int(d.Weekday()) + 6) % 7) // Monday=0
		month := float64(d.Month())
		_, week := d.ISOWeek()

		cols[KindDayOfWeek][i] = dow
		cols[KindDayOfMonth][i] = float64(d.Day())
		cols[KindWeekOfYear][i] = float64(week)
		cols[KindMonth][i] = month
		cols[KindYear][i] = float64(d.Year())
		cols[KindQuarter][i] = float64((int(d.Month())-1)/3 + 1)
		cols[KindIsMonthEnd][i] = boolToFloat(isMonthEnd(d))
		cols[KindIsMonthStart][i] = boolToFloat(d.Day() == 1)
		cols[KindDayOfWeekSin][i] = math.Sin(2 * math.Pi * dow / 7)
		cols[KindDayOfWeekCos][i] = math.Cos(2 * math.Pi * dow / 7)
		cols[KindMonthSin][i] = math.Sin(2 * math.Pi * month / 12)
		cols[KindMonthCos][i] = math.Cos(2 * math.Pi * month / 12)
	}

	frame := NewFrame(dates)
	for _, k := range CalendarKeys {
		var err error
		frame, err = frame.WithColumn(k, cols[k.Kind])
		if err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func isMonthEnd(d time.Time) bool {
	return d.AddDate(0, 0, 1).Month() != d.Month()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
