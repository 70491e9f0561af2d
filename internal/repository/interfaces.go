package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/futures-signal/internal/models"
)

// BarRepository defines the interface for daily bar data access
type BarRepository interface {
	UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) error
	GetBySymbol(ctx context.Context, symbol string) ([]models.Bar, error)
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)
	GetLatestDate(ctx context.Context, symbol string) (time.Time, error)
	Count(ctx context.Context, symbol string) (int, error)
}

// MacroEventRepository defines the interface for macro announcement data access
type MacroEventRepository interface {
	ReplaceSeries(ctx context.Context, series string, events []models.MacroEvent) error
	GetBySeries(ctx context.Context, series string) ([]models.MacroEvent, error)
	ListSeries(ctx context.Context) ([]string, error)
}

// PredictionRepository defines the interface for out-of-sample prediction storage
type PredictionRepository interface {
	InsertBatch(ctx context.Context, predictions []models.PredictionRecord) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error)
}

// BacktestReportRepository defines the interface for walk-forward report storage
type BacktestReportRepository interface {
	Create(ctx context.Context, report *models.BacktestReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestReport, error)
	GetLatestBySymbol(ctx context.Context, symbol string) (*models.BacktestReport, error)
	List(ctx context.Context, symbol string, limit int) ([]*models.BacktestReport, error)
}
