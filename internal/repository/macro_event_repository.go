package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/models"
)

// PostgresMacroEventRepository implements MacroEventRepository for PostgreSQL
type PostgresMacroEventRepository struct {
	db *database.DB
}

// NewPostgresMacroEventRepository creates a new macro event repository
func NewPostgresMacroEventRepository(db *database.DB) MacroEventRepository {
	return &PostgresMacroEventRepository{db: db}
}

// ReplaceSeries atomically swaps the stored series for a fresh alignment.
// Provider tables get re-exported wholesale, so partial updates are not
// meaningful.
func (r *PostgresMacroEventRepository) ReplaceSeries(ctx context.Context, series string, events []models.MacroEvent) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM macro_events WHERE series = $1`, series); err != nil {
			return fmt.Errorf("failed to clear macro series %q: %w", series, err)
		}
		if len(events) == 0 {
			return nil
		}

		columns := []string{"series", "date", "actual", "forecast", "previous", "change", "days_until_next"}
		source := make([][]interface{}, len(events))
		for i, event := range events {
			source[i] = []interface{}{
				series, event.Date, event.Actual, event.Forecast, event.Previous,
				event.Change, event.DaysUntilNext,
			}
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"macro_events"}, columns, pgx.CopyFromRows(source))
		if err != nil {
			return fmt.Errorf("failed to batch insert macro events: %w", err)
		}
		if count != int64(len(events)) {
			return fmt.Errorf("inserted %d macro events, expected %d", count, len(events))
		}
		return nil
	})
}

// GetBySeries retrieves all events of a macro series in ascending date order
func (r *PostgresMacroEventRepository) GetBySeries(ctx context.Context, series string) ([]models.MacroEvent, error) {
	query := `
		SELECT series, date, actual, forecast, previous, change, days_until_next
		FROM macro_events WHERE series = $1 ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, series)
	if err != nil {
		return nil, fmt.Errorf("failed to query macro events: %w", err)
	}
	defer rows.Close()

	var events []models.MacroEvent
	for rows.Next() {
		var event models.MacroEvent
		err := rows.Scan(
			&event.Series, &event.Date, &event.Actual, &event.Forecast,
			&event.Previous, &event.Change, &event.DaysUntilNext,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan macro event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ListSeries returns the distinct stored series names
func (r *PostgresMacroEventRepository) ListSeries(ctx context.Context) ([]string, error) {
	rows, err := r.db.GetPool().Query(ctx, `SELECT DISTINCT series FROM macro_events ORDER BY series`)
	if err != nil {
		return nil, fmt.Errorf("failed to list macro series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan series name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
