package service

import (
	"sync"
	"time"
)

// IngestionMetrics tracks counters for a run of the ingestion service.
// Counters are cumulative until Reset; the scheduler resets them at the
// start of each sync so each run's log line reflects that run alone.
type IngestionMetrics struct {
	mu sync.Mutex

	BarsIngested     int
	BarsRejected     int
	MacroRowsAligned int
	MacroRowsDropped int
	SyncRuns         int
	SyncFailures     int
	LastSyncAt       time.Time
}

// NewIngestionMetrics creates a zeroed metrics tracker.
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{}
}

// RecordBarsIngested adds accepted and rejected bar counts.
func (m *IngestionMetrics) RecordBarsIngested(accepted, rejected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BarsIngested += accepted
	m.BarsRejected += rejected
}

// RecordMacroAligned adds aligned and dropped macro row counts.
func (m *IngestionMetrics) RecordMacroAligned(aligned, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MacroRowsAligned += aligned
	m.MacroRowsDropped += dropped
}

// RecordSync marks a sync attempt and whether it failed.
func (m *IngestionMetrics) RecordSync(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncRuns++
	if failed {
		m.SyncFailures++
	}
	m.LastSyncAt = time.Now()
}

// Snapshot returns a copy of the current counters.
func (m *IngestionMetrics) Snapshot() IngestionMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return IngestionMetrics{
		BarsIngested:     m.BarsIngested,
		BarsRejected:     m.BarsRejected,
		MacroRowsAligned: m.MacroRowsAligned,
		MacroRowsDropped: m.MacroRowsDropped,
		SyncRuns:         m.SyncRuns,
		SyncFailures:     m.SyncFailures,
		LastSyncAt:       m.LastSyncAt,
	}
}

// Reset zeroes every counter.
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BarsIngested = 0
	m.BarsRejected = 0
	m.MacroRowsAligned = 0
	m.MacroRowsDropped = 0
	m.SyncRuns = 0
	m.SyncFailures = 0
	m.LastSyncAt = time.Time{}
}
