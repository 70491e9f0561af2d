package features

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/futures-signal/internal/models"
)

// Adjacency selects which table row a macro announcement counts its
// days-until-next gap against. Most provider tables are laid out
// most-recent-first and look at the next row; Fed-rate tables look at the
// previous one. The direction is configuration, never hard-coded.
type Adjacency int

const (
	// AdjacencyNext pairs each announcement with the next row in table order.
	AdjacencyNext Adjacency = iota
	// AdjacencyPrevious pairs each announcement with the previous row.
	AdjacencyPrevious
)

// AnnouncementRow is one raw row of a provider macro table, before parsing.
type AnnouncementRow struct {
	DateString string
	Time       string
	Actual     string
	Forecast   string
	Previous   string
}

// MacroSeries configures the alignment of one macro table.
type MacroSeries struct {
	// Name prefixes the derived predictor columns (e.g. "cpi", "fed_rate").
	Name string
	// Adjacency direction for the days-until-next computation.
	Adjacency Adjacency
	// DropMalformed skips rows whose date cannot be parsed instead of
	// failing the whole table.
	DropMalformed bool
}

// announcementDateLayout parses provider dates such as "Jan 10, 2024" once
// the parenthetical suffix ("(Dec)") has been discarded.
const announcementDateLayout = "Jan 2, 2006"

// AlignMacro parses a raw announcement table into macro events in table
// order, computing change = forecast − previous and the day-count gap to the
// adjacent row per the series' configured direction. The gap is undefined at
// the boundary row that has no adjacent record.
func AlignMacro(series MacroSeries, rows []AnnouncementRow) ([]models.MacroEvent, error) {
	if series.Name == "" {
		return nil, fmt.Errorf("macro series name is required")
	}

	events := make([]models.MacroEvent, 0, len(rows))
	for i, row := range rows {
		date, err := parseAnnouncementDate(row.DateString)
		if err != nil {
			if series.DropMalformed {
				continue
			}
			return nil, fmt.Errorf("%s row %d: %w", series.Name, i, err)
		}

		actual, err := parseAnnouncementValue(row.Actual)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: actual: %w", series.Name, i, err)
		}
		forecast, err := parseAnnouncementValue(row.Forecast)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: forecast: %w", series.Name, i, err)
		}
		previous, err := parseAnnouncementValue(row.Previous)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: previous: %w", series.Name, i, err)
		}

		events = append(events, models.MacroEvent{
			Series:   series.Name,
			Date:     date,
			Actual:   actual,
			Forecast: forecast,
			Previous: previous,
			Change:   forecast.Sub(previous),
		})
	}

	applyAdjacencyGaps(events, series.Adjacency)
	return events, nil
}

func applyAdjacencyGaps(events []models.MacroEvent, adjacency Adjacency) {
	for i := range events {
		var adjacent *models.MacroEvent
		switch adjacency {
		case AdjacencyNext:
			if i+1 < len(events) {
				adjacent = &events[i+1]
			}
		case AdjacencyPrevious:
			if i > 0 {
				adjacent = &events[i-1]
			}
		}
		if adjacent == nil {
			continue
		}
		gap := adjacent.Date.Sub(events[i].Date).Hours() / 24
		if gap < 0 {
			gap = -gap
		}
		events[i].DaysUntilNext = &gap
	}
}

// Macro predictor kind suffixes.
const (
	macroAnnouncementSuffix = "_announcement"
	macroChangeSuffix       = "_change"
	macroDaysUntilSuffix    = "_days_until_next_announcement"
)

// MacroKeys returns the three predictor keys a series contributes.
func MacroKeys(seriesName string) []Key {
	return []Key{
		{Kind: Kind(seriesName + macroAnnouncementSuffix)},
		{Kind: Kind(seriesName + macroChangeSuffix)},
		{Kind: Kind(seriesName + macroDaysUntilSuffix)},
	}
}

// MacroFrame converts aligned events to a sparse frame keyed by announcement
// date, ready to left-join onto the daily series. Trading days with no
// announcement receive missing values from the join, which the caller may
// zero-fill or drop.
func MacroFrame(seriesName string, events []models.MacroEvent) (*Frame, error) {
	dates := make([]time.Time, len(events))
	flags := make([]float64, len(events))
	changes := make([]float64, len(events))
	gaps := nanSlice(len(events))
	for i, e := range events {
		dates[i] = e.Date
		flags[i] = 1
		changes[i], _ = e.Change.Float64()
		if e.DaysUntilNext != nil {
			gaps[i] = *e.DaysUntilNext
		}
	}

	keys := MacroKeys(seriesName)
	frame := NewFrame(dates)
	for i, col := range [][]float64{flags, changes, gaps} {
		var err error
		frame, err = frame.WithColumn(keys[i], col)
		if err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// parseAnnouncementDate normalizes provider dates of the form
// "Jan 10, 2024 (Dec)" by discarding the parenthetical suffix.
func parseAnnouncementDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if idx := strings.Index(trimmed, "("); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	date, err := time.Parse(announcementDateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrUnparseableDate, raw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseAnnouncementValue reads a numeric announcement field, tolerating
// percent signs and thousands separators ("4.25%", "1,234K" falls back to
// the bare number after stripping the unit suffix).
func parseAnnouncementValue(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "K")
	cleaned = strings.TrimSuffix(cleaned, "M")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable value %q: %w", raw, err)
	}
	return value, nil
}
