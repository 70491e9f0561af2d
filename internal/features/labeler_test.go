package features

import (
	"testing"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestLabelTargets(t *testing.T) {
	bars := barsFromCloses([]float64{100, 102, 101, 105, 103})
	labeled := LabelTargets(bars)

	wantTomorrow := []float64{102, 101, 105, 103}
	wantTarget := []int{1, 0, 1, 0}
	for i := range wantTarget {
		if labeled[i].TomorrowClose == nil || *labeled[i].TomorrowClose != wantTomorrow[i] {
			t.Fatalf("row %d: expected tomorrow close %v, got %v", i, wantTomorrow[i], labeled[i].TomorrowClose)
		}
		if labeled[i].Target == nil || *labeled[i].Target != wantTarget[i] {
			t.Fatalf("row %d: expected target %d, got %v", i, wantTarget[i], labeled[i].Target)
		}
	}

	last := labeled[len(labeled)-1]
	if last.Target != nil || last.TomorrowClose != nil {
		t.Fatalf("final row must stay unlabeled, got target=%v tomorrow=%v", last.Target, last.TomorrowClose)
	}
}

func TestLabelTargetsDoesNotMutateInput(t *testing.T) {
	bars := barsFromCloses([]float64{100, 102})
	LabelTargets(bars)
	if bars[0].Target != nil {
		t.Fatalf("input slice was mutated")
	}
}

func TestLabelTargetsEmpty(t *testing.T) {
	if got := LabelTargets(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}
