// Package main provides the entry point for the walk-forward backtest CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/backtest"
	"github.com/yourusername/futures-signal/internal/classifier"
	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/database"
	applogger "github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/repository"
	"github.com/yourusername/futures-signal/internal/service"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		symbol      = flag.String("symbol", "", "Override the configured symbol")
		trainStart  = flag.Int("train-start", 0, "Override the initial training window size")
		testStep    = flag.Int("test-step", 0, "Override the test window size")
		output      = flag.String("output", "", "Override output path for the JSON report")
		csvExport   = flag.String("csv", "", "Also export key metrics as CSV to this path")
		equityPath  = flag.String("equity-curve", "", "Write the signal equity curve as CSV to this path")
		bootstrap   = flag.Bool("bootstrap", false, "Bootstrap a confidence interval around precision")
		iterations  = flag.Int("bootstrap-iterations", 1000, "Bootstrap resample count")
		seed        = flag.Int64("seed", 42, "Bootstrap random seed")
		store       = flag.Bool("store", true, "Persist predictions and the report to the database")
	)
	flag.Parse()

	log := logrus.New()
	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath, log)
	log = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	applyOverrides(cfg, *symbol, *trainStart, *testStep, *output)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to build repositories: %v", err)
	}

	report, result := runBacktest(ctx, cfg, repos, log)

	if *bootstrap {
		br, err := backtest.BootstrapPrecision(ctx, result.Predictions, backtest.BootstrapConfig{
			Iterations: *iterations,
			Seed:       *seed,
		})
		if err != nil {
			log.WithError(err).Error("Bootstrap failed")
		} else {
			report.Bootstrap = &br
		}
	}

	if *store {
		persist(ctx, repos, report, result, log)
	}
	writeOutputs(report, cfg.Backtest.OutputPath, *csvExport, log)
	if *equityPath != "" {
		writeEquityCurve(ctx, repos, cfg, result, *equityPath, log)
	}

	fmt.Print(backtest.GenerateConsoleReport(report))
}

func applyOverrides(cfg *config.Config, symbol string, trainStart, testStep int, output string) {
	if symbol != "" {
		cfg.Backtest.Symbol = symbol
	}
	if trainStart > 0 {
		cfg.Backtest.TrainStart = trainStart
	}
	if testStep > 0 {
		cfg.Backtest.TestStep = testStep
	}
	if output != "" {
		cfg.Backtest.OutputPath = output
	}
}

func runBacktest(ctx context.Context, cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) (backtest.Report, *backtest.Result) {
	builder := service.NewDatasetBuilder(repos.Bar, repos.MacroEvent, applogger.NewPipelineLogger(log))
	ds, err := builder.BuildDataset(ctx, cfg.Backtest, cfg.Macro)
	if err != nil {
		log.Fatalf("Failed to build dataset: %v", err)
	}

	btCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		log.Fatalf("Invalid backtest configuration: %v", err)
	}

	model := classifier.NewCachedClassifier(&cfg.ModelService, ds.Names, log)
	engine, err := backtest.NewEngine(btCfg, model, log)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	result, err := engine.Run(ctx, ds)
	if err != nil {
		log.Fatalf("Walk-forward run failed: %v", err)
	}

	return backtest.NewReport(result, backtest.Evaluate(result), btCfg), result
}

func persist(ctx context.Context, repos *repository.Repositories, report backtest.Report, result *backtest.Result, log *logrus.Logger) {
	if err := repos.Prediction.InsertBatch(ctx, result.Predictions); err != nil {
		log.WithError(err).Error("Failed to store predictions")
	}
	record, err := report.ToModel()
	if err != nil {
		log.WithError(err).Error("Failed to convert report for storage")
		return
	}
	if err := repos.BacktestReport.Create(ctx, record); err != nil {
		log.WithError(err).Error("Failed to store report")
	}
}

func writeOutputs(report backtest.Report, outputPath, csvPath string, log *logrus.Logger) {
	if outputPath != "" {
		if err := backtest.WriteJSONReport(report, outputPath); err != nil {
			log.WithError(err).Error("Failed to write JSON report")
		}
	}
	if csvPath != "" {
		if err := backtest.WriteCSVExport(report, csvPath); err != nil {
			log.WithError(err).Error("Failed to write CSV export")
		}
	}
}

func writeEquityCurve(ctx context.Context, repos *repository.Repositories, cfg *config.Config, result *backtest.Result, path string, log *logrus.Logger) {
	bars, err := repos.Bar.GetBySymbol(ctx, cfg.Backtest.Symbol)
	if err != nil {
		log.WithError(err).Error("Failed to load bars for equity curve")
		return
	}

	returns := make(map[time.Time]float64, len(bars))
	for i := 0; i+1 < len(bars); i++ {
		returns[bars[i].Day()] = (bars[i+1].Close - bars[i].Close) / bars[i].Close
	}

	curve := backtest.BuildSignalCurve(result.Predictions, returns)
	if err := os.WriteFile(path, []byte(curve.ToCSV()), 0o644); err != nil {
		log.WithError(err).Error("Failed to write equity curve")
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
