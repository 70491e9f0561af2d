package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/models"
)

const reportColumns = `id, symbol, start_date, end_date, train_start, test_step, folds,
	failed_folds, predictions, precision, class_balance, importances, feature_count,
	model_version, completed_at`

// PostgresBacktestReportRepository implements BacktestReportRepository for PostgreSQL
type PostgresBacktestReportRepository struct {
	db *database.DB
}

// NewPostgresBacktestReportRepository creates a new backtest report repository
func NewPostgresBacktestReportRepository(db *database.DB) BacktestReportRepository {
	return &PostgresBacktestReportRepository{db: db}
}

// Create inserts a new walk-forward report
func (r *PostgresBacktestReportRepository) Create(ctx context.Context, report *models.BacktestReport) error {
	query := `
		INSERT INTO backtest_reports (id, symbol, start_date, end_date, train_start, test_step,
			folds, failed_folds, predictions, precision, class_balance, importances,
			feature_count, model_version, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		report.ID, report.Symbol, report.StartDate, report.EndDate, report.TrainStart,
		report.TestStep, report.Folds, report.FailedFolds, report.Predictions,
		report.Precision, report.ClassBalance, report.Importances, report.FeatureCount,
		report.ModelVersion, report.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backtest report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its run ID
func (r *PostgresBacktestReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM backtest_reports WHERE id = $1`, reportColumns)
	return scanReport(r.db.GetPool().QueryRow(ctx, query, id))
}

// GetLatestBySymbol retrieves the most recently completed report for a symbol
func (r *PostgresBacktestReportRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*models.BacktestReport, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM backtest_reports WHERE symbol = $1 ORDER BY completed_at DESC LIMIT 1`,
		reportColumns,
	)
	return scanReport(r.db.GetPool().QueryRow(ctx, query, symbol))
}

// List retrieves recent reports for a symbol, newest first
func (r *PostgresBacktestReportRepository) List(ctx context.Context, symbol string, limit int) ([]*models.BacktestReport, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM backtest_reports WHERE symbol = $1 ORDER BY completed_at DESC LIMIT $2`,
		reportColumns,
	)

	rows, err := r.db.GetPool().Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.BacktestReport
	for rows.Next() {
		report, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*models.BacktestReport, error) {
	report := &models.BacktestReport{}
	err := row.Scan(
		&report.ID, &report.Symbol, &report.StartDate, &report.EndDate, &report.TrainStart,
		&report.TestStep, &report.Folds, &report.FailedFolds, &report.Predictions,
		&report.Precision, &report.ClassBalance, &report.Importances, &report.FeatureCount,
		&report.ModelVersion, &report.CompletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan backtest report: %w", err)
	}
	return report, nil
}

func scanReportRow(rows pgx.Rows) (*models.BacktestReport, error) {
	report := &models.BacktestReport{}
	err := rows.Scan(
		&report.ID, &report.Symbol, &report.StartDate, &report.EndDate, &report.TrainStart,
		&report.TestStep, &report.Folds, &report.FailedFolds, &report.Predictions,
		&report.Precision, &report.ClassBalance, &report.Importances, &report.FeatureCount,
		&report.ModelVersion, &report.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan backtest report: %w", err)
	}
	return report, nil
}
