package backtest

import (
	"fmt"

	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/models"
)

// Default walk-forward schedule parameters.
const (
	DefaultTrainStart = 500
	DefaultTestStep   = 50
)

// Config holds backtest-specific settings
type Config struct {
	Symbol       string
	TrainStart   int
	TestStep     int
	OutputPath   string
	ModelVersion string
}

// FromConfig converts app config to backtest config, filling defaults for
// unset schedule parameters
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}

	bt := Config{
		Symbol:       cfg.Symbol,
		TrainStart:   cfg.TrainStart,
		TestStep:     cfg.TestStep,
		OutputPath:   cfg.OutputPath,
		ModelVersion: cfg.ModelVersion,
	}
	if bt.TrainStart == 0 {
		bt.TrainStart = DefaultTrainStart
	}
	if bt.TestStep == 0 {
		bt.TestStep = DefaultTestStep
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.Symbol == "" {
		return models.ErrSymbolRequired
	}
	if c.TrainStart <= 0 {
		return fmt.Errorf("train start must be positive")
	}
	if c.TestStep <= 0 {
		return fmt.Errorf("test step must be positive")
	}
	return nil
}
