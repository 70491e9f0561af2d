package backtest

import (
	"errors"
	"testing"

	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/models"
)

func TestFromConfigDefaults(t *testing.T) {
	cfg, err := FromConfig(&config.BacktestConfig{Symbol: "ES"})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if cfg.TrainStart != DefaultTrainStart {
		t.Errorf("expected default train start %d, got %d", DefaultTrainStart, cfg.TrainStart)
	}
	if cfg.TestStep != DefaultTestStep {
		t.Errorf("expected default test step %d, got %d", DefaultTestStep, cfg.TestStep)
	}
}

func TestFromConfigNil(t *testing.T) {
	if _, err := FromConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{TrainStart: 500, TestStep: 50}).Validate(); !errors.Is(err, models.ErrSymbolRequired) {
		t.Errorf("expected ErrSymbolRequired, got %v", err)
	}
	if err := (Config{Symbol: "ES", TrainStart: 0, TestStep: 50}).Validate(); err == nil {
		t.Error("expected error for non-positive train start")
	}
	if err := (Config{Symbol: "ES", TrainStart: 500, TestStep: 0}).Validate(); err == nil {
		t.Error("expected error for non-positive test step")
	}
}

// A test window wider than the initial training window is a legal schedule:
// the fold builder simply produces fewer, wider folds.
func TestConfigValidateWideStep(t *testing.T) {
	if err := (Config{Symbol: "ES", TrainStart: 10, TestStep: 50}).Validate(); err != nil {
		t.Fatalf("expected wide test step to validate, got: %v", err)
	}

	folds, err := BuildFolds(70, 10, 50)
	if err != nil {
		t.Fatalf("BuildFolds failed: %v", err)
	}
	if len(folds) != 2 {
		t.Fatalf("expected 2 folds, got %d", len(folds))
	}
	if folds[0].TestEnd != 60 || folds[1].TestEnd != 70 {
		t.Errorf("unexpected fold boundaries: %+v", folds)
	}
}
