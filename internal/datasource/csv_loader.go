package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/futures-signal/internal/features"
	"github.com/yourusername/futures-signal/internal/models"
)

// barDateLayouts are tried in order when parsing provider export dates.
var barDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 02, 2006",
}

// LoadBarsCSV reads a provider's daily OHLCV export. Header names are
// matched case-insensitively; "Price" is accepted for the close column and
// volume suffixes (K, M, B) are expanded. Rows come back sorted ascending
// by date regardless of the export's order.
func LoadBarsCSV(path string) ([]models.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bars file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read bars header: %w", err)
	}

	columns := mapColumns(header)
	required := []string{"date", "open", "high", "low", "close"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("bars file missing %q column: %w", name, ErrInvalidData)
		}
	}

	var bars []models.Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		date, err := parseBarDate(record[columns["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar := models.Bar{Date: date}
		if bar.Open, err = parsePrice(record[columns["open"]]); err != nil {
			return nil, fmt.Errorf("line %d open: %w", line, err)
		}
		if bar.High, err = parsePrice(record[columns["high"]]); err != nil {
			return nil, fmt.Errorf("line %d high: %w", line, err)
		}
		if bar.Low, err = parsePrice(record[columns["low"]]); err != nil {
			return nil, fmt.Errorf("line %d low: %w", line, err)
		}
		if bar.Close, err = parsePrice(record[columns["close"]]); err != nil {
			return nil, fmt.Errorf("line %d close: %w", line, err)
		}
		if idx, ok := columns["volume"]; ok {
			if bar.Volume, err = parseVolume(record[idx]); err != nil {
				return nil, fmt.Errorf("line %d volume: %w", line, err)
			}
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars, nil
}

// LoadAnnouncementsCSV reads a macro announcement table in provider export
// form. Values stay raw strings; parsing and alignment happen downstream.
func LoadAnnouncementsCSV(path string) ([]features.AnnouncementRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open announcements file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read announcements header: %w", err)
	}

	columns := mapColumns(header)
	dateIdx, ok := columns["release date"]
	if !ok {
		if dateIdx, ok = columns["date"]; !ok {
			return nil, fmt.Errorf("announcements file missing date column: %w", ErrInvalidData)
		}
	}

	var rows []features.AnnouncementRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read announcements row: %w", err)
		}

		row := features.AnnouncementRow{DateString: record[dateIdx]}
		if idx, ok := columns["time"]; ok {
			row.Time = record[idx]
		}
		if idx, ok := columns["actual"]; ok {
			row.Actual = record[idx]
		}
		if idx, ok := columns["forecast"]; ok {
			row.Forecast = record[idx]
		}
		if idx, ok := columns["previous"]; ok {
			row.Previous = record[idx]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// mapColumns builds a lowercase header name to index map.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.Trim(name, "\uFEFF\"")))
		if key == "price" {
			key = "close"
		}
		if key == "vol." || key == "vol" {
			key = "volume"
		}
		columns[key] = i
	}
	return columns
}

func parseBarDate(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(strings.Trim(raw, "\""))
	for _, layout := range barDateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q: %w", raw, models.ErrUnparseableDate)
}

func parsePrice(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(strings.Trim(raw, "\"")), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty price: %w", ErrInvalidData)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, ErrInvalidData)
	}
	return value, nil
}

func parseVolume(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(strings.Trim(raw, "\"")), ",", "")
	if cleaned == "" || cleaned == "-" {
		return 0, nil
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "K"):
		multiplier = 1e3
		cleaned = strings.TrimSuffix(cleaned, "K")
	case strings.HasSuffix(cleaned, "M"):
		multiplier = 1e6
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "B"):
		multiplier = 1e9
		cleaned = strings.TrimSuffix(cleaned, "B")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: %w", raw, ErrInvalidData)
	}
	return value * multiplier, nil
}
