package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	if first != second {
		t.Error("expected InitRegistry to return the same registry on repeat calls")
	}
	if GetRegistry() != first {
		t.Error("expected GetRegistry to return the initialized registry")
	}
}

func TestRecordBarsIngested(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(BarsIngestedTotal.WithLabelValues("csv"))
	rejectedBefore := testutil.ToFloat64(BarsRejectedTotal)

	RecordBarsIngested("csv", 250, 3)

	if got := testutil.ToFloat64(BarsIngestedTotal.WithLabelValues("csv")) - before; got != 250 {
		t.Errorf("expected 250 ingested bars recorded, got %v", got)
	}
	if got := testutil.ToFloat64(BarsRejectedTotal) - rejectedBefore; got != 3 {
		t.Errorf("expected 3 rejected bars recorded, got %v", got)
	}
}

func TestRecordBacktestRun(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(BacktestRunsTotal.WithLabelValues("success"))
	RecordBacktestRun("success", 12.5)

	if got := testutil.ToFloat64(BacktestRunsTotal.WithLabelValues("success")) - before; got != 1 {
		t.Errorf("expected 1 successful run recorded, got %v", got)
	}
}

func TestRecordFoldOutcome(t *testing.T) {
	InitRegistry()

	completedBefore := testutil.ToFloat64(FoldsCompletedTotal)
	failedBefore := testutil.ToFloat64(FoldsFailedTotal)

	RecordFoldOutcome(18, 2)

	if got := testutil.ToFloat64(FoldsCompletedTotal) - completedBefore; got != 18 {
		t.Errorf("expected 18 completed folds recorded, got %v", got)
	}
	if got := testutil.ToFloat64(FoldsFailedTotal) - failedBefore; got != 2 {
		t.Errorf("expected 2 failed folds recorded, got %v", got)
	}
}

func TestUpdateBacktestPrecision(t *testing.T) {
	InitRegistry()

	UpdateBacktestPrecision("ES", 0.57)
	if got := testutil.ToFloat64(BacktestPrecision.WithLabelValues("ES")); got != 0.57 {
		t.Errorf("expected precision gauge 0.57, got %v", got)
	}
}

func TestUpdateDatasetShape(t *testing.T) {
	InitRegistry()

	UpdateDatasetShape("ES", 1200, 33)
	if got := testutil.ToFloat64(DatasetRows.WithLabelValues("ES")); got != 1200 {
		t.Errorf("expected dataset rows gauge 1200, got %v", got)
	}
	if got := testutil.ToFloat64(DatasetColumns.WithLabelValues("ES")); got != 33 {
		t.Errorf("expected dataset columns gauge 33, got %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordSyncRun("success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "futures_signal_sync_runs_total") {
		t.Error("expected exposition output to contain futures_signal_sync_runs_total")
	}
}
