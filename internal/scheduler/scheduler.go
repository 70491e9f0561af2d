// Package scheduler runs the recurring pipeline jobs: the daily bar sync and
// the walk-forward backtest refresh.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/config"
	"github.com/yourusername/futures-signal/internal/datasource"
	"github.com/yourusername/futures-signal/internal/metrics"
	"github.com/yourusername/futures-signal/internal/service"
)

// BacktestRunner is the refresh job's entrypoint; the binary wires it to the
// full dataset-assembly and walk-forward run.
type BacktestRunner func(ctx context.Context) error

// Scheduler manages the recurring pipeline jobs.
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	log          *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
}

// syncTimeout bounds one scheduled daily sync, macro tables included.
const syncTimeout = 30 * time.Minute

// backtestTimeout bounds one scheduled walk-forward refresh.
const backtestTimeout = 4 * time.Hour

// NewScheduler creates a scheduler over the ingestion service.
func NewScheduler(ingestionSvc *service.IngestionService, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc: ingestionSvc,
		log:          log,
		jobIDs:       make([]cron.EntryID, 0),
	}
}

// ScheduleDailySync schedules the bar sync plus macro table refresh. The
// macro tables are re-read from their configured paths on every run so a
// refreshed provider export is picked up without a restart.
func (s *Scheduler) ScheduleDailySync(cronExpression string, source datasource.BarSource, symbol string, macroCfgs []config.MacroSeriesConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		s.log.WithFields(logrus.Fields{
			"job":    "daily_sync",
			"symbol": symbol,
			"source": source.Name(),
		}).Info("starting scheduled daily sync")

		stored, err := s.ingestionSvc.SyncDaily(ctx, source, symbol)
		if err != nil {
			metrics.RecordSyncRun("failure")
			s.log.WithError(err).Error("scheduled daily sync failed")
			return
		}
		metrics.RecordSyncRun("success")
		metrics.RecordBarsIngested(source.Name(), stored, 0)

		if err := s.ingestionSvc.IngestAllMacro(ctx, macroCfgs); err != nil {
			s.log.WithError(err).Error("scheduled macro refresh failed")
		}

		s.log.WithFields(logrus.Fields{
			"job":         "daily_sync",
			"bars_stored": stored,
		}).Info("scheduled daily sync completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add daily sync job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("cron", cronExpression).Info("scheduled daily sync job")
	return nil
}

// ScheduleBacktestRefresh schedules a recurring walk-forward run.
func (s *Scheduler) ScheduleBacktestRefresh(cronExpression string, run BacktestRunner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
		defer cancel()

		started := time.Now()
		s.log.WithField("job", "backtest_refresh").Info("starting scheduled backtest refresh")

		if err := run(ctx); err != nil {
			metrics.RecordBacktestRun("failure", time.Since(started).Seconds())
			s.log.WithError(err).Error("scheduled backtest refresh failed")
			return
		}
		metrics.RecordBacktestRun("success", time.Since(started).Seconds())
		s.log.WithFields(logrus.Fields{
			"job":         "backtest_refresh",
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("scheduled backtest refresh completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add backtest refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithField("cron", cronExpression).Info("scheduled backtest refresh job")
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("jobs", len(s.jobIDs)).Info("scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.log.Info("scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run.
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
