package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// InsertBatch bulk-inserts a run's out-of-sample predictions with COPY
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []models.PredictionRecord) error {
	if len(predictions) == 0 {
		return nil
	}

	columns := []string{"run_id", "date", "target", "prediction", "fold_index"}
	source := make([][]interface{}, len(predictions))
	for i, p := range predictions {
		source[i] = []interface{}{p.RunID, p.Date, p.Target, p.Prediction, p.FoldIndex}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"predictions"}, columns, pgx.CopyFromRows(source))
	if err != nil {
		return fmt.Errorf("failed to batch insert predictions: %w", err)
	}
	if count != int64(len(predictions)) {
		return fmt.Errorf("inserted %d predictions, expected %d", count, len(predictions))
	}
	return nil
}

// GetByRunID retrieves a run's predictions in ascending date order
func (r *PostgresPredictionRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error) {
	query := `
		SELECT run_id, date, target, prediction, fold_index
		FROM predictions WHERE run_id = $1 ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		if err := rows.Scan(&p.RunID, &p.Date, &p.Target, &p.Prediction, &p.FoldIndex); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
