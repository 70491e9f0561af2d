package service

import (
	"context"
	"sort"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// fakeBarRepo is an in-memory BarRepository keyed by symbol and day.
type fakeBarRepo struct {
	bars map[string]map[time.Time]models.Bar
}

func newFakeBarRepo() *fakeBarRepo {
	return &fakeBarRepo{bars: make(map[string]map[time.Time]models.Bar)}
}

func (r *fakeBarRepo) UpsertBatch(_ context.Context, symbol string, bars []models.Bar) error {
	if r.bars[symbol] == nil {
		r.bars[symbol] = make(map[time.Time]models.Bar)
	}
	for _, bar := range bars {
		r.bars[symbol][bar.Day()] = bar
	}
	return nil
}

func (r *fakeBarRepo) GetBySymbol(_ context.Context, symbol string) ([]models.Bar, error) {
	bars := make([]models.Bar, 0, len(r.bars[symbol]))
	for _, bar := range r.bars[symbol] {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (r *fakeBarRepo) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	all, _ := r.GetBySymbol(ctx, symbol)
	var bars []models.Bar
	for _, bar := range all {
		if !bar.Day().Before(start) && !bar.Day().After(end) {
			bars = append(bars, bar)
		}
	}
	return bars, nil
}

func (r *fakeBarRepo) GetLatestDate(ctx context.Context, symbol string) (time.Time, error) {
	all, _ := r.GetBySymbol(ctx, symbol)
	if len(all) == 0 {
		return time.Time{}, models.ErrNotFound
	}
	return all[len(all)-1].Day(), nil
}

func (r *fakeBarRepo) Count(_ context.Context, symbol string) (int, error) {
	return len(r.bars[symbol]), nil
}

// fakeMacroRepo is an in-memory MacroEventRepository.
type fakeMacroRepo struct {
	series map[string][]models.MacroEvent
}

func newFakeMacroRepo() *fakeMacroRepo {
	return &fakeMacroRepo{series: make(map[string][]models.MacroEvent)}
}

func (r *fakeMacroRepo) ReplaceSeries(_ context.Context, series string, events []models.MacroEvent) error {
	r.series[series] = append([]models.MacroEvent{}, events...)
	return nil
}

func (r *fakeMacroRepo) GetBySeries(_ context.Context, series string) ([]models.MacroEvent, error) {
	return r.series[series], nil
}

func (r *fakeMacroRepo) ListSeries(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// seedBars stores n consecutive weekday-agnostic daily bars with a mild
// alternating drift so both direction labels occur.
func seedBars(repo *fakeBarRepo, symbol string, n int) []models.Bar {
	bars := make([]models.Bar, n)
	close := 100.0
	for i := 0; i < n; i++ {
		if i%3 == 2 {
			close -= 0.5
		} else {
			close += 1.0
		}
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		bars[i] = models.Bar{
			Date:   day,
			Open:   close - 0.5,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000 + float64(i),
		}
	}
	_ = repo.UpsertBatch(context.Background(), symbol, bars)
	return bars
}
