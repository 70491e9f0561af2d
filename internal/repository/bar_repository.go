package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/models"
)

const errScanBar = "failed to scan bar: %w"

const barColumns = "date, open, high, low, close, volume, tomorrow_close, target"

// PostgresBarRepository implements BarRepository for PostgreSQL
type PostgresBarRepository struct {
	db *database.DB
}

// NewPostgresBarRepository creates a new bar repository
func NewPostgresBarRepository(db *database.DB) BarRepository {
	return &PostgresBarRepository{db: db}
}

// UpsertBatch inserts or refreshes a batch of daily bars. Re-ingesting a
// date overwrites the stored row, which also refreshes labels when the
// series gains a newer final bar.
func (r *PostgresBarRepository) UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO bars (symbol, date, open, high, low, close, volume, tomorrow_close, target)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (symbol, date) DO UPDATE SET
				open = EXCLUDED.open,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				close = EXCLUDED.close,
				volume = EXCLUDED.volume,
				tomorrow_close = EXCLUDED.tomorrow_close,
				target = EXCLUDED.target
		`
		for i := range bars {
			bar := &bars[i]
			_, err := tx.Exec(ctx, query,
				symbol, bar.Day(), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
				bar.TomorrowClose, bar.Target,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert bar %s: %w", bar.Day().Format("2006-01-02"), err)
			}
		}
		return nil
	})
}

// GetBySymbol retrieves all bars for a symbol in ascending date order
func (r *PostgresBarRepository) GetBySymbol(ctx context.Context, symbol string) ([]models.Bar, error) {
	query := fmt.Sprintf(`SELECT %s FROM bars WHERE symbol = $1 ORDER BY date ASC`, barColumns)

	rows, err := r.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetRange retrieves bars for a symbol within a date range, inclusive
func (r *PostgresBarRepository) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM bars WHERE symbol = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`,
		barColumns,
	)

	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetLatestDate returns the date of the most recent stored bar
func (r *PostgresBarRepository) GetLatestDate(ctx context.Context, symbol string) (time.Time, error) {
	query := `SELECT date FROM bars WHERE symbol = $1 ORDER BY date DESC LIMIT 1`

	var date time.Time
	err := r.db.GetPool().QueryRow(ctx, query, symbol).Scan(&date)
	if err == pgx.ErrNoRows {
		return time.Time{}, models.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest bar date: %w", err)
	}
	return date, nil
}

// Count returns the number of stored bars for a symbol
func (r *PostgresBarRepository) Count(ctx context.Context, symbol string) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx, `SELECT COUNT(*) FROM bars WHERE symbol = $1`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bars: %w", err)
	}
	return count, nil
}

func scanBars(rows pgx.Rows) ([]models.Bar, error) {
	var bars []models.Bar
	for rows.Next() {
		var bar models.Bar
		err := rows.Scan(
			&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume,
			&bar.TomorrowClose, &bar.Target,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanBar, err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}
