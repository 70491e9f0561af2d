package repository

import (
	"fmt"

	"github.com/yourusername/futures-signal/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Bar            BarRepository
	MacroEvent     MacroEventRepository
	Prediction     PredictionRepository
	BacktestReport BacktestReportRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Bar:            NewPostgresBarRepository(db),
		MacroEvent:     NewPostgresMacroEventRepository(db),
		Prediction:     NewPostgresPredictionRepository(db),
		BacktestReport: NewPostgresBacktestReportRepository(db),
	}, nil
}
