package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/futures-signal/internal/config"
)

// modelStub fakes the model service: every train request mints a new model
// id and every predict replies with one label per row.
type modelStub struct {
	trainCalls   atomic.Int64
	predictCalls atomic.Int64
	predictRows  atomic.Int64
	label        int
	importances  []float64
}

func (s *modelStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/models/train", func(w http.ResponseWriter, r *http.Request) {
		n := s.trainCalls.Add(1)
		var req TrainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(TrainResponse{
			ModelID:     fmt.Sprintf("model-%d", n),
			Importances: s.importances,
		})
	})
	mux.HandleFunc("POST /api/v1/models/{id}/predict", func(w http.ResponseWriter, r *http.Request) {
		s.predictCalls.Add(1)
		var req PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.predictRows.Add(int64(len(req.Features)))
		labels := make([]int, len(req.Features))
		for i := range labels {
			labels[i] = s.label
		}
		json.NewEncoder(w).Encode(PredictResponse{Predictions: labels})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func testModelConfig(url string) *config.ModelServiceConfig {
	return &config.ModelServiceConfig{
		HTTPAddress:           url,
		ModelType:             "random_forest",
		Seed:                  42,
		RequestTimeoutSeconds: 5,
		CacheTTLSeconds:       60,
		CacheMaxSize:          100,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestHTTPClassifierFitAndPredict(t *testing.T) {
	stub := &modelStub{label: 1, importances: []float64{0.7, 0.3}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewHTTPClassifier(testModelConfig(srv.URL), []string{"a", "b"}, testLogger())

	if err := c.Fit(context.Background(), [][]float64{{1, 2}, {3, 4}}, []int{1, 0}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if c.ModelID() != "model-1" {
		t.Errorf("expected model-1, got %q", c.ModelID())
	}

	got := c.FeatureImportances()
	if len(got) != 2 || got[0] != 0.7 {
		t.Errorf("unexpected importances: %v", got)
	}
	// Returned slice is a copy; mutating it must not affect the client.
	got[0] = 0
	if c.FeatureImportances()[0] != 0.7 {
		t.Error("FeatureImportances returned a shared slice")
	}

	preds, err := c.Predict(context.Background(), [][]float64{{5, 6}, {7, 8}, {9, 10}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}
	for i, p := range preds {
		if p != 1 {
			t.Errorf("prediction %d: expected 1, got %d", i, p)
		}
	}
}

func TestHTTPClassifierPredictBeforeFit(t *testing.T) {
	c := NewHTTPClassifier(testModelConfig("http://localhost:0"), nil, testLogger())

	_, err := c.Predict(context.Background(), [][]float64{{1}})
	if !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
}

func TestHTTPClassifierFitMissingValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(testModelConfig(srv.URL), nil, testLogger())
	err := c.Fit(context.Background(), [][]float64{{1}}, []int{1})
	if !errors.Is(err, ErrMissingValues) {
		t.Errorf("expected ErrMissingValues, got %v", err)
	}
}

func TestHTTPClassifierFitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(testModelConfig(srv.URL), nil, testLogger())
	err := c.Fit(context.Background(), [][]float64{{1}}, []int{1})
	if !errors.Is(err, ErrTrainingFailed) {
		t.Errorf("expected ErrTrainingFailed, got %v", err)
	}
}

func TestHTTPClassifierFitUnreachable(t *testing.T) {
	c := NewHTTPClassifier(testModelConfig("http://127.0.0.1:1"), nil, testLogger())
	err := c.Fit(context.Background(), [][]float64{{1}}, []int{1})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestHTTPClassifierPredictCountMismatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/models/train", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TrainResponse{ModelID: "m1"})
	})
	mux.HandleFunc("POST /api/v1/models/{id}/predict", func(w http.ResponseWriter, r *http.Request) {
		// One label for two rows.
		json.NewEncoder(w).Encode(PredictResponse{Predictions: []int{1}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClassifier(testModelConfig(srv.URL), nil, testLogger())
	if err := c.Fit(context.Background(), [][]float64{{1}}, []int{1}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	_, err := c.Predict(context.Background(), [][]float64{{1}, {2}})
	if !errors.Is(err, ErrInvalidPrediction) {
		t.Errorf("expected ErrInvalidPrediction, got %v", err)
	}
}

func TestHTTPClassifierHealthCheck(t *testing.T) {
	stub := &modelStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewHTTPClassifier(testModelConfig(srv.URL), nil, testLogger())
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	down := NewHTTPClassifier(testModelConfig("http://127.0.0.1:1"), nil, testLogger())
	if err := down.HealthCheck(context.Background()); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestCachedClassifierServesRepeatsFromCache(t *testing.T) {
	stub := &modelStub{label: 1}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewCachedClassifier(testModelConfig(srv.URL), nil, testLogger())
	if err := c.Fit(context.Background(), [][]float64{{1, 2}}, []int{1}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	rows := [][]float64{{1, 2}, {3, 4}}
	if _, err := c.Predict(context.Background(), rows); err != nil {
		t.Fatalf("first Predict failed: %v", err)
	}
	if got := stub.predictRows.Load(); got != 2 {
		t.Fatalf("expected 2 rows fetched, got %d", got)
	}

	// Same rows again: fully cached, no further service traffic.
	preds, err := c.Predict(context.Background(), rows)
	if err != nil {
		t.Fatalf("second Predict failed: %v", err)
	}
	if got := stub.predictRows.Load(); got != 2 {
		t.Errorf("expected cache hit, but %d rows were fetched", got)
	}
	if preds[0] != 1 || preds[1] != 1 {
		t.Errorf("unexpected predictions: %v", preds)
	}
}

func TestCachedClassifierPartialCache(t *testing.T) {
	stub := &modelStub{label: 1}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewCachedClassifier(testModelConfig(srv.URL), nil, testLogger())
	if err := c.Fit(context.Background(), [][]float64{{1}}, []int{1}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if _, err := c.Predict(context.Background(), [][]float64{{1, 2}}); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	// One known row, one new: only the new one goes over the wire.
	if _, err := c.Predict(context.Background(), [][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if got := stub.predictRows.Load(); got != 2 {
		t.Errorf("expected 2 rows fetched in total, got %d", got)
	}
}

func TestCachedClassifierRefitInvalidates(t *testing.T) {
	stub := &modelStub{label: 1}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewCachedClassifier(testModelConfig(srv.URL), nil, testLogger())
	rows := [][]float64{{1, 2}}

	if err := c.Fit(context.Background(), rows, []int{1}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := c.Predict(context.Background(), rows); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// A fresh model may label the same row differently.
	stub.label = 0
	if err := c.Fit(context.Background(), rows, []int{0}); err != nil {
		t.Fatalf("refit failed: %v", err)
	}
	preds, err := c.Predict(context.Background(), rows)
	if err != nil {
		t.Fatalf("Predict after refit failed: %v", err)
	}
	if preds[0] != 0 {
		t.Errorf("expected refit prediction 0, got %d", preds[0])
	}
	if got := stub.predictRows.Load(); got != 2 {
		t.Errorf("expected cache flush to force a refetch, got %d rows", got)
	}
}

func TestHashFeaturesStable(t *testing.T) {
	a := HashFeatures([]float64{1.5, 2.5, 3.5})
	b := HashFeatures([]float64{1.5, 2.5, 3.5})
	if a != b {
		t.Error("identical vectors hashed differently")
	}
	if a == HashFeatures([]float64{1.5, 2.5, 3.6}) {
		t.Error("different vectors collided")
	}
	// Order matters: a digest, not a sum.
	if a == HashFeatures([]float64{3.5, 2.5, 1.5}) {
		t.Error("reordered vector collided")
	}
}

func TestPredictionCacheMaxSize(t *testing.T) {
	pc := NewPredictionCache(time.Minute, 2)
	pc.Set(CacheKey{ModelID: "m", FeatureSum: "a"}, 1)
	pc.Set(CacheKey{ModelID: "m", FeatureSum: "b"}, 0)
	pc.Set(CacheKey{ModelID: "m", FeatureSum: "c"}, 1)

	if _, ok := pc.Get(CacheKey{ModelID: "m", FeatureSum: "c"}); ok {
		t.Error("entry beyond max size should not have been stored")
	}
	if v, ok := pc.Get(CacheKey{ModelID: "m", FeatureSum: "a"}); !ok || v != 1 {
		t.Errorf("expected cached value 1, got %d (found=%v)", v, ok)
	}

	hits, misses := pc.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}
