// Package config provides configuration management for the futures-signal pipeline.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	ModelService  ModelServiceConfig  `mapstructure:"model_service" validate:"required"`
	Backtest      BacktestConfig      `mapstructure:"backtest" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Macro         []MacroSeriesConfig `mapstructure:"macro"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ModelServiceConfig represents the model service (classifier capability)
// configuration
type ModelServiceConfig struct {
	HTTPAddress           string `mapstructure:"http_address" validate:"required"`
	ModelType             string `mapstructure:"model_type" validate:"required"`
	Seed                  int64  `mapstructure:"seed"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize          int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// BacktestConfig represents walk-forward backtesting configuration
type BacktestConfig struct {
	Symbol        string `mapstructure:"symbol" validate:"required"`
	TrainStart    int    `mapstructure:"train_start" validate:"required,gt=0"`
	TestStep      int    `mapstructure:"test_step" validate:"required,gt=0"`
	Horizons      []int  `mapstructure:"horizons" validate:"omitempty,dive,gt=1"`
	ZeroFillMacro bool   `mapstructure:"zero_fill_macro"`
	OutputPath    string `mapstructure:"output_path" validate:"required"`
	ModelVersion  string `mapstructure:"model_version"`
}

// DataIngestionConfig represents data ingestion configuration
type DataIngestionConfig struct {
	PricesPath string         `mapstructure:"prices_path"`
	BarsAPIURL string         `mapstructure:"bars_api_url" validate:"omitempty,url"`
	APIKey     string         `mapstructure:"api_key"`
	Stream     StreamConfig   `mapstructure:"stream"`
	Schedule   ScheduleConfig `mapstructure:"schedule"`
}

// StreamConfig configures the live quote stream recorder
type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"omitempty,url|startswith=ws"`
	Symbol  string `mapstructure:"symbol"`
}

// ScheduleConfig represents scheduled job cron expressions
type ScheduleConfig struct {
	DailySync       string `mapstructure:"daily_sync"`
	BacktestRefresh string `mapstructure:"backtest_refresh"`
}

// MacroSeriesConfig represents one macro announcement table and how its
// announcement-adjacency direction is laid out
type MacroSeriesConfig struct {
	Name          string `mapstructure:"name" validate:"required"`
	Path          string `mapstructure:"path" validate:"required"`
	Adjacency     string `mapstructure:"adjacency" validate:"required,adjacency"`
	DropMalformed bool   `mapstructure:"drop_malformed"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// GetDatabaseDSN builds a PostgreSQL connection string from the database
// configuration
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
