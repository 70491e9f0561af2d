// Package main provides the entry point for the long-running signal service:
// scheduled ingestion, backtest refreshes, and the live quote recorder.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/futures-signal/internal/backtest"
	"github.com/yourusername/futures-signal/internal/classifier"
	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/database"
	"github.com/yourusername/futures-signal/internal/datasource"
	"github.com/yourusername/futures-signal/internal/health"
	applogger "github.com/yourusername/futures-signal/internal/logger"
	"github.com/yourusername/futures-signal/internal/metrics"
	"github.com/yourusername/futures-signal/internal/models"
	"github.com/yourusername/futures-signal/internal/repository"
	"github.com/yourusername/futures-signal/internal/scheduler"
	"github.com/yourusername/futures-signal/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "signal-service",
	Short: "Futures direction signal pipeline",
	Long:  `Runs the daily bar sync, macro table refresh, and walk-forward backtest on a schedule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database and model service connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return status()
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	pipelineLog := applogger.NewPipelineLogger(logger)
	ingestionSvc := service.NewIngestionService(repos.Bar, repos.MacroEvent, pipelineLog)
	model := classifier.NewHTTPClassifier(&cfg.ModelService, nil, logger)

	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      logger,
		DB:          db,
		Model:       model,
	})
	if err := healthSrv.Start(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx)
	}

	sched, err := buildScheduler(repos, ingestionSvc)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	stream, err := startStream(ctx, repos)
	if err != nil {
		logger.WithError(err).Error("Quote stream failed to start; continuing without it")
	}
	if stream != nil {
		defer stream.Close()
	}

	healthSrv.SetReady(true)
	logger.WithFields(logrus.Fields{
		"version":  Version,
		"commit":   GitCommit,
		"built":    BuildDate,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Signal service started")

	<-ctx.Done()
	healthSrv.SetReady(false)
	logger.Info("Signal service shutting down")
	return nil
}

func buildScheduler(repos *repository.Repositories, ingestionSvc *service.IngestionService) (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(ingestionSvc, logger)

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), logger)
	source := datasource.NewBarsAPIClient(httpClient,
		cfg.DataIngestion.BarsAPIURL, cfg.DataIngestion.APIKey,
		cfg.DataIngestion.BarsAPIURL != "", logger)

	if expr := cfg.DataIngestion.Schedule.DailySync; expr != "" {
		if err := sched.ScheduleDailySync(expr, source, cfg.Backtest.Symbol, cfg.Macro); err != nil {
			return nil, err
		}
	}
	if expr := cfg.DataIngestion.Schedule.BacktestRefresh; expr != "" {
		if err := sched.ScheduleBacktestRefresh(expr, backtestRunner(repos)); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// backtestRunner assembles a fresh dataset and runs the full walk-forward
// schedule, persisting the predictions and report.
func backtestRunner(repos *repository.Repositories) scheduler.BacktestRunner {
	return func(ctx context.Context) error {
		started := time.Now()

		builder := service.NewDatasetBuilder(repos.Bar, repos.MacroEvent, applogger.NewPipelineLogger(logger))
		ds, err := builder.BuildDataset(ctx, cfg.Backtest, cfg.Macro)
		if err != nil {
			return err
		}
		metrics.UpdateDatasetShape(ds.Symbol, ds.Rows(), len(ds.Names))
		metrics.RecordFeatureDerivation(time.Since(started).Seconds())

		btCfg, err := backtest.FromConfig(&cfg.Backtest)
		if err != nil {
			return err
		}

		model := classifier.NewCachedClassifier(&cfg.ModelService, ds.Names, logger)
		engine, err := backtest.NewEngine(btCfg, model, logger)
		if err != nil {
			return err
		}

		result, err := engine.Run(ctx, ds)
		if err != nil {
			return err
		}
		metrics.RecordFoldOutcome(result.FoldsCompleted, result.FoldsFailed)

		eval := backtest.Evaluate(result)
		metrics.UpdateBacktestPrecision(result.Symbol, eval.Precision)

		if err := repos.Prediction.InsertBatch(ctx, result.Predictions); err != nil {
			return err
		}
		metrics.RecordPredictionsStored(len(result.Predictions))

		record, err := backtest.NewReport(result, eval, btCfg).ToModel()
		if err != nil {
			return err
		}
		return repos.BacktestReport.Create(ctx, record)
	}
}

// startStream connects the live quote recorder when configured. Ticks are
// folded into a running daily bar that is upserted on each day rollover.
func startStream(ctx context.Context, repos *repository.Repositories) (*datasource.QuoteStream, error) {
	streamCfg := cfg.DataIngestion.Stream
	if !streamCfg.Enabled {
		return nil, nil
	}

	symbol := streamCfg.Symbol
	if symbol == "" {
		symbol = cfg.Backtest.Symbol
	}

	stream := datasource.NewQuoteStream(streamCfg.URL, cfg.DataIngestion.APIKey, symbol, logger)
	if err := stream.Connect(ctx); err != nil {
		return nil, err
	}
	if err := stream.Subscribe(); err != nil {
		stream.Close()
		return nil, err
	}

	stream.AddHandler(func(quote datasource.Quote) error {
		metrics.RecordStreamTick()
		return nil
	})
	stream.AddHandler(intradayBarRecorder(ctx, stream, repos, symbol))

	logger.WithField("symbol", symbol).Info("Quote stream connected")
	return stream, nil
}

// intradayBarRecorder upserts the stream's running daily bar periodically so
// the current day's partial bar is queryable before the daily sync settles it.
func intradayBarRecorder(ctx context.Context, stream *datasource.QuoteStream, repos *repository.Repositories, symbol string) datasource.QuoteHandler {
	var lastFlush time.Time
	return func(quote datasource.Quote) error {
		if time.Since(lastFlush) < time.Minute {
			return nil
		}
		lastFlush = time.Now()

		bar := stream.CurrentBar()
		if bar == nil {
			return nil
		}
		return repos.Bar.UpsertBatch(ctx, symbol, []models.Bar{*bar})
	}
}

func startMetricsServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server error")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

func status() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		fmt.Printf("database: error: %v\n", err)
	} else {
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("database: error: %v\n", err)
		} else {
			fmt.Println("database: ok")
		}
	}

	model := classifier.NewHTTPClassifier(&cfg.ModelService, nil, logger)
	if err := model.HealthCheck(ctx); err != nil {
		fmt.Printf("model service: error: %v\n", err)
		return err
	}
	fmt.Println("model service: ok")
	return nil
}
