package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/datasource"
	"github.com/yourusername/futures-signal/internal/features"
	"github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/models"
	"github.com/yourusername/futures-signal/internal/repository"
)

// defaultHistoryLookback bounds the first API sync when the database holds
// no bars yet for a symbol.
const defaultHistoryLookback = 10 * 365 * 24 * time.Hour

// IngestionService loads daily bars and macro announcement tables from their
// sources, screens them, and writes them to the repositories. Labeling and
// feature derivation happen later, at dataset assembly.
type IngestionService struct {
	barRepo   repository.BarRepository
	macroRepo repository.MacroEventRepository
	validator *DataValidator
	metrics   *IngestionMetrics
	log       *logger.PipelineLogger
}

// NewIngestionService creates an ingestion service over the given repositories.
func NewIngestionService(
	barRepo repository.BarRepository,
	macroRepo repository.MacroEventRepository,
	log *logger.PipelineLogger,
) *IngestionService {
	return &IngestionService{
		barRepo:   barRepo,
		macroRepo: macroRepo,
		validator: NewDataValidator(log),
		metrics:   NewIngestionMetrics(),
		log:       log,
	}
}

// Metrics exposes the service's run counters.
func (s *IngestionService) Metrics() *IngestionMetrics {
	return s.metrics
}

// IngestBarsCSV loads a provider CSV export of daily bars, screens it, and
// upserts the survivors. Returns the number of bars stored.
func (s *IngestionService) IngestBarsCSV(ctx context.Context, symbol, path string) (int, error) {
	if symbol == "" {
		return 0, models.ErrSymbolRequired
	}

	bars, err := datasource.LoadBarsCSV(path)
	if err != nil {
		return 0, fmt.Errorf("loading bars from %s: %w", path, err)
	}

	return s.storeBars(ctx, symbol, "csv:"+path, bars)
}

// IngestBarsAPI fetches daily bars for a date range from an API source,
// screens them, and upserts the survivors.
func (s *IngestionService) IngestBarsAPI(ctx context.Context, source datasource.BarSource, symbol string, start, end time.Time) (int, error) {
	if symbol == "" {
		return 0, models.ErrSymbolRequired
	}

	bars, err := source.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return 0, fmt.Errorf("fetching bars from %s: %w", source.Name(), err)
	}

	return s.storeBars(ctx, symbol, source.Name(), bars)
}

// SyncDaily fetches every bar published since the latest stored date and
// upserts it. The latest stored day is re-fetched so a partial bar recorded
// intraday is overwritten by the settled one. A symbol with no history yet
// starts from the default lookback window.
func (s *IngestionService) SyncDaily(ctx context.Context, source datasource.BarSource, symbol string) (int, error) {
	start := time.Now().UTC().Add(-defaultHistoryLookback)
	latest, err := s.barRepo.GetLatestDate(ctx, symbol)
	switch {
	case err == nil:
		start = latest
	case errors.Is(err, models.ErrNotFound):
		// First sync for this symbol.
	default:
		s.metrics.RecordSync(true)
		return 0, fmt.Errorf("reading latest bar date for %s: %w", symbol, err)
	}

	stored, err := s.IngestBarsAPI(ctx, source, symbol, start, time.Now().UTC())
	s.metrics.RecordSync(err != nil)
	return stored, err
}

func (s *IngestionService) storeBars(ctx context.Context, symbol, sourceName string, bars []models.Bar) (int, error) {
	accepted, rejected, err := s.validator.ValidateSeries(symbol, bars)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordBarsIngested(len(accepted), rejected)

	if len(accepted) == 0 {
		return 0, nil
	}

	if err := s.barRepo.UpsertBatch(ctx, symbol, accepted); err != nil {
		return 0, fmt.Errorf("upserting %d bars for %s: %w", len(accepted), symbol, err)
	}

	s.log.LogBarsIngested(symbol, sourceName, len(accepted),
		accepted[0].Day(), accepted[len(accepted)-1].Day())
	return len(accepted), nil
}

// IngestMacroCSV loads one macro announcement table, aligns it per its
// configured adjacency direction, and replaces the stored series with the
// result. Returns the number of events stored.
func (s *IngestionService) IngestMacroCSV(ctx context.Context, seriesCfg config.MacroSeriesConfig) (int, error) {
	rows, err := datasource.LoadAnnouncementsCSV(seriesCfg.Path)
	if err != nil {
		return 0, fmt.Errorf("loading %s announcements from %s: %w", seriesCfg.Name, seriesCfg.Path, err)
	}

	series := features.MacroSeries{
		Name:          seriesCfg.Name,
		Adjacency:     adjacencyFromConfig(seriesCfg.Adjacency),
		DropMalformed: seriesCfg.DropMalformed,
	}
	events, err := features.AlignMacro(series, rows)
	if err != nil {
		return 0, fmt.Errorf("aligning %s announcements: %w", seriesCfg.Name, err)
	}

	dropped := len(rows) - len(events)
	s.metrics.RecordMacroAligned(len(events), dropped)
	s.log.LogMacroAligned(seriesCfg.Name, len(events), dropped)

	if err := s.macroRepo.ReplaceSeries(ctx, seriesCfg.Name, events); err != nil {
		return 0, fmt.Errorf("replacing series %s: %w", seriesCfg.Name, err)
	}
	return len(events), nil
}

// IngestAllMacro loads every configured macro table. A failing table does
// not stop the others; the first error is returned after all are attempted.
func (s *IngestionService) IngestAllMacro(ctx context.Context, seriesCfgs []config.MacroSeriesConfig) error {
	var firstErr error
	for _, seriesCfg := range seriesCfgs {
		if _, err := s.IngestMacroCSV(ctx, seriesCfg); err != nil {
			s.log.LogDataQualityIssue(seriesCfg.Name, "macro_ingest_failed", -1, err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func adjacencyFromConfig(direction string) features.Adjacency {
	if direction == "previous" {
		return features.AdjacencyPrevious
	}
	return features.AdjacencyNext
}
