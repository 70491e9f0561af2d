package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	if _, err := NewRepositories(nil); err == nil {
		t.Fatal("expected error for nil database")
	}
}

// The remaining tests exercise a live PostgreSQL instance and skip when the
// test database is not configured.

func TestBarRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("NewRepositories failed: %v", err)
	}

	ctx := context.Background()
	symbol := "TEST_" + uuid.NewString()[:8]

	bars := []models.Bar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 104, High: 108, Low: 103, Close: 107, Volume: 1200},
	}
	if err := repos.Bar.UpsertBatch(ctx, symbol, bars); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	stored, err := repos.Bar.GetBySymbol(ctx, symbol)
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(stored))
	}
	if stored[0].Close != 104 {
		t.Errorf("expected close 104, got %v", stored[0].Close)
	}

	// Upserting the same date overwrites instead of duplicating.
	bars[1].Close = 110
	if err := repos.Bar.UpsertBatch(ctx, symbol, bars[1:]); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}
	count, err := repos.Bar.Count(ctx, symbol)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 bars after upsert, got %d", count)
	}

	latest, err := repos.Bar.GetLatestDate(ctx, symbol)
	if err != nil {
		t.Fatalf("GetLatestDate failed: %v", err)
	}
	if !latest.Equal(bars[1].Date) {
		t.Errorf("expected latest date %v, got %v", bars[1].Date, latest)
	}
}

func TestBarRepositoryNotFound(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("NewRepositories failed: %v", err)
	}

	_, err = repos.Bar.GetLatestDate(context.Background(), "MISSING_"+uuid.NewString()[:8])
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("NewRepositories failed: %v", err)
	}

	ctx := context.Background()
	runID := uuid.New()
	predictions := []models.PredictionRecord{
		{RunID: runID, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Target: 1, Prediction: 1, FoldIndex: 0},
		{RunID: runID, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Target: 0, Prediction: 1, FoldIndex: 0},
	}

	if err := repos.Prediction.InsertBatch(ctx, predictions); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	stored, err := repos.Prediction.GetByRunID(ctx, runID)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(stored))
	}
	if stored[1].Target != 0 || stored[1].Prediction != 1 {
		t.Errorf("unexpected prediction row: %+v", stored[1])
	}
}

func TestBacktestReportRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("NewRepositories failed: %v", err)
	}

	ctx := context.Background()
	report := &models.BacktestReport{
		ID:           uuid.New(),
		Symbol:       "TEST_" + uuid.NewString()[:8],
		StartDate:    time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		TrainStart:   500,
		TestStep:     50,
		Folds:        10,
		FailedFolds:  1,
		Predictions:  450,
		Precision:    0.56,
		FeatureCount: 34,
		ModelVersion: "v1",
		CompletedAt:  time.Now().UTC(),
	}
	if err := report.SetClassBalance(map[int]float64{0: 0.47, 1: 0.53}); err != nil {
		t.Fatalf("SetClassBalance failed: %v", err)
	}
	if err := report.SetImportances([]models.FeatureImportance{{Name: "rsi_5", Score: 0.12}}); err != nil {
		t.Fatalf("SetImportances failed: %v", err)
	}

	if err := repos.BacktestReport.Create(ctx, report); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := repos.BacktestReport.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Precision != 0.56 || stored.Folds != 10 {
		t.Errorf("unexpected report: %+v", stored)
	}

	latest, err := repos.BacktestReport.GetLatestBySymbol(ctx, report.Symbol)
	if err != nil {
		t.Fatalf("GetLatestBySymbol failed: %v", err)
	}
	if latest.ID != report.ID {
		t.Errorf("expected latest report %v, got %v", report.ID, latest.ID)
	}
}
