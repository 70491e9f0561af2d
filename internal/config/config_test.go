// Package config provides configuration management for the futures-signal pipeline.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	developmentEnv               = "development"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "futures-signal" {
		t.Errorf("expected app name 'futures-signal', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}

	if cfg.Backtest.TrainStart != 500 {
		t.Errorf("expected train_start 500, got %d", cfg.Backtest.TrainStart)
	}

	if cfg.Backtest.TestStep != 50 {
		t.Errorf("expected test_step 50, got %d", cfg.Backtest.TestStep)
	}

	if len(cfg.Macro) != 2 {
		t.Fatalf("expected 2 macro series, got %d", len(cfg.Macro))
	}

	if cfg.Macro[1].Adjacency != "previous" {
		t.Errorf("expected fed_rate adjacency 'previous', got '%s'", cfg.Macro[1].Adjacency)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("FUTURES_SIGNAL_APP_NAME", "test-app")
	defer os.Unsetenv("FUTURES_SIGNAL_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("expected app name 'test-app' from environment, got '%s'", cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} expansion inside the YAML file
func TestLoadConfigExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

// TestLoadWithDefaults tests that defaults fill in when the file is missing
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Backtest.TrainStart != 500 {
		t.Errorf("expected default train_start 500, got %d", cfg.Backtest.TrainStart)
	}

	if cfg.Backtest.TestStep != 50 {
		t.Errorf("expected default test_step 50, got %d", cfg.Backtest.TestStep)
	}

	if cfg.ModelService.ModelType != "random_forest" {
		t.Errorf("expected default model type 'random_forest', got '%s'", cfg.ModelService.ModelType)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidAdjacency tests validation of macro adjacency direction
func TestValidateInvalidAdjacency(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Macro[0].Adjacency = "sideways"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid adjacency")
	}

	if !strings.Contains(strings.ToLower(err.Error()), "adjacency") {
		t.Errorf("expected adjacency validation error, got: %v", err)
	}
}

// TestValidateStepLargerThanStart tests that a test window wider than the
// initial training window passes validation; the fold builder handles it.
func TestValidateStepLargerThanStart(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Backtest.TrainStart = 10
	cfg.Backtest.TestStep = 50
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected test_step larger than train_start to validate, got: %v", err)
	}
}

// TestValidateDuplicateMacroSeries tests rejection of duplicate series names
func TestValidateDuplicateMacroSeries(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Macro = append(cfg.Macro, cfg.Macro[0])
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for duplicate macro series")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}

	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry ssl mode, got '%s'", dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}
