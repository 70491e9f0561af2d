// Package main provides the entry point for the one-shot ingestion CLI.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/datasource"
	applogger "github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/repository"
	"github.com/yourusername/futures-signal/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		symbol     = flag.String("symbol", "", "Override the configured symbol")
		pricesPath = flag.String("prices", "", "Override the bar CSV path")
		skipBars   = flag.Bool("skip-bars", false, "Skip bar ingestion")
		skipMacro  = flag.Bool("skip-macro", false, "Skip macro table ingestion")
		useAPI     = flag.Bool("api", false, "Sync bars from the API instead of the CSV export")
	)
	flag.Parse()

	log := logrus.New()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, log)
	log = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	if *symbol != "" {
		cfg.Backtest.Symbol = *symbol
	}
	if *pricesPath != "" {
		cfg.DataIngestion.PricesPath = *pricesPath
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to build repositories: %v", err)
	}

	svc := service.NewIngestionService(repos.Bar, repos.MacroEvent, applogger.NewPipelineLogger(log))

	if !*skipBars {
		ingestBars(ctx, svc, cfg, *useAPI, log)
	}
	if !*skipMacro {
		if err := svc.IngestAllMacro(ctx, cfg.Macro); err != nil {
			log.WithError(err).Error("Macro ingestion completed with errors")
		}
	}

	snap := svc.Metrics().Snapshot()
	log.WithFields(logrus.Fields{
		"bars_ingested": snap.BarsIngested,
		"bars_rejected": snap.BarsRejected,
		"macro_aligned": snap.MacroRowsAligned,
		"macro_dropped": snap.MacroRowsDropped,
	}).Info("Ingestion finished")
}

func ingestBars(ctx context.Context, svc *service.IngestionService, cfg *config.Config, useAPI bool, log *logrus.Logger) {
	symbol := cfg.Backtest.Symbol

	if useAPI {
		httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), log)
		source := datasource.NewBarsAPIClient(httpClient,
			cfg.DataIngestion.BarsAPIURL, cfg.DataIngestion.APIKey, true, log)
		if _, err := svc.SyncDaily(ctx, source, symbol); err != nil {
			log.Fatalf("API sync failed: %v", err)
		}
		return
	}

	if cfg.DataIngestion.PricesPath == "" {
		log.Fatal("No prices path configured; pass -prices or set data_ingestion.prices_path")
	}
	if _, err := svc.IngestBarsCSV(ctx, symbol, cfg.DataIngestion.PricesPath); err != nil {
		log.Fatalf("CSV ingestion failed: %v", err)
	}
}

func loadConfigWithSecrets(path string, log *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
