package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/futures-signal/internal/backtest"
	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/features"
	"github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/models"
	"github.com/yourusername/futures-signal/internal/repository"
)

// DatasetBuilder assembles the model-ready dataset for a symbol: stored bars
// are labeled with next-day direction, technical and calendar predictors are
// derived, macro announcement columns are joined on by date, and only rows
// that are complete and labeled survive.
type DatasetBuilder struct {
	barRepo   repository.BarRepository
	macroRepo repository.MacroEventRepository
	log       *logger.PipelineLogger
}

// NewDatasetBuilder creates a dataset builder over the given repositories.
func NewDatasetBuilder(
	barRepo repository.BarRepository,
	macroRepo repository.MacroEventRepository,
	log *logger.PipelineLogger,
) *DatasetBuilder {
	return &DatasetBuilder{barRepo: barRepo, macroRepo: macroRepo, log: log}
}

// BuildDataset derives the full feature frame for the configured symbol and
// returns it as a dataset the walk-forward engine can consume. Macro columns
// are sparse after the join; when zero_fill_macro is set they are filled
// with zero (no announcement that day), otherwise announcement-free days are
// dropped along with all other incomplete rows.
func (b *DatasetBuilder) BuildDataset(ctx context.Context, cfg config.BacktestConfig, macroCfgs []config.MacroSeriesConfig) (*backtest.Dataset, error) {
	started := time.Now()

	bars, err := b.barRepo.GetBySymbol(ctx, cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("loading bars for %s: %w", cfg.Symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars stored for %s: %w", cfg.Symbol, models.ErrInsufficientData)
	}

	labeled := features.LabelTargets(bars)

	frame, keys, err := b.deriveFrame(ctx, labeled, cfg, macroCfgs)
	if err != nil {
		return nil, err
	}

	dataset, complete := assembleDataset(cfg.Symbol, frame, keys, labeled)

	b.log.LogFeaturesDerived(cfg.Symbol, frame.Len(), len(keys), complete,
		float64(time.Since(started).Milliseconds()))

	return dataset, nil
}

// deriveFrame builds the joined predictor frame and the ordered key list:
// technical horizons first, then calendar, then each macro series in
// configuration order.
func (b *DatasetBuilder) deriveFrame(ctx context.Context, labeled []models.Bar, cfg config.BacktestConfig, macroCfgs []config.MacroSeriesConfig) (*features.Frame, []features.Key, error) {
	technical, err := features.DeriveTechnical(labeled, cfg.Horizons)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving technical predictors: %w", err)
	}
	frame := technical.Frame
	keys := append([]features.Key{}, technical.Keys...)

	calendar, err := features.DeriveCalendar(frame.Dates())
	if err != nil {
		return nil, nil, fmt.Errorf("deriving calendar predictors: %w", err)
	}
	frame, err = frame.Join(calendar)
	if err != nil {
		return nil, nil, fmt.Errorf("joining calendar predictors: %w", err)
	}
	keys = append(keys, features.CalendarKeys...)

	var macroKeys []features.Key
	for _, seriesCfg := range macroCfgs {
		events, err := b.macroRepo.GetBySeries(ctx, seriesCfg.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading macro series %s: %w", seriesCfg.Name, err)
		}
		macroFrame, err := features.MacroFrame(seriesCfg.Name, events)
		if err != nil {
			return nil, nil, fmt.Errorf("framing macro series %s: %w", seriesCfg.Name, err)
		}
		frame, err = frame.Join(macroFrame)
		if err != nil {
			return nil, nil, fmt.Errorf("joining macro series %s: %w", seriesCfg.Name, err)
		}
		macroKeys = append(macroKeys, features.MacroKeys(seriesCfg.Name)...)
	}
	keys = append(keys, macroKeys...)

	if cfg.ZeroFillMacro && len(macroKeys) > 0 {
		frame = frame.FillMissing(macroKeys, 0)
	}

	return frame, keys, nil
}

// assembleDataset extracts the complete, labeled rows of the frame into the
// dataset's parallel slices. Returns the dataset and the count of rows kept.
func assembleDataset(symbol string, frame *features.Frame, keys []features.Key, labeled []models.Bar) (*backtest.Dataset, int) {
	barsByDay := make(map[time.Time]models.Bar, len(labeled))
	for _, bar := range labeled {
		barsByDay[bar.Day()] = bar
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name()
	}

	dates := frame.Dates()
	dataset := &backtest.Dataset{Symbol: symbol, Names: names}
	for i, date := range dates {
		bar, ok := barsByDay[date]
		if !ok || !bar.HasTarget() || bar.TomorrowClose == nil {
			continue
		}
		if !frame.RowComplete(i, keys) {
			continue
		}
		dataset.Dates = append(dataset.Dates, date)
		dataset.Features = append(dataset.Features, frame.Row(i, keys))
		dataset.Targets = append(dataset.Targets, *bar.Target)
		dataset.Returns = append(dataset.Returns, (*bar.TomorrowClose-bar.Close)/bar.Close)
	}

	return dataset, len(dataset.Dates)
}
