package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

func TestDeriveCalendarKnownMonday(t *testing.T) {
	// 2024-01-01 is a Monday.
	dates := []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	frame, err := DeriveCalendar(dates)
	if err != nil {
		t.Fatalf("DeriveCalendar failed: %v", err)
	}

	checks := map[Kind]float64{
		KindDayOfWeek:    0,
		KindDayOfMonth:   1,
		KindWeekOfYear:   1,
		KindMonth:        1,
		KindYear:         2024,
		KindQuarter:      1,
		KindIsMonthEnd:   0,
		KindIsMonthStart: 1,
		KindDayOfWeekSin: 0,
		KindDayOfWeekCos: 1,
	}
	for kind, want := range checks {
		got := frame.Value(0, Key{Kind: kind})
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("%s: expected %v, got %v", kind, want, got)
		}
	}
}

func TestDeriveCalendarCyclicalEncodings(t *testing.T) {
	// December: month_sin = sin(2pi) ~ 0, month_cos = cos(2pi) ~ 1.
	dates := []time.Time{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}
	frame, err := DeriveCalendar(dates)
	if err != nil {
		t.Fatalf("DeriveCalendar failed: %v", err)
	}
	if got := frame.Value(0, Key{Kind: KindMonthSin}); math.Abs(got) > 1e-9 {
		t.Fatalf("month_sin for December: expected ~0, got %v", got)
	}
	if got := frame.Value(0, Key{Kind: KindMonthCos}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("month_cos for December: expected ~1, got %v", got)
	}
	if got := frame.Value(0, Key{Kind: KindIsMonthEnd}); got != 1 {
		t.Fatalf("Dec 31 should be month end, got %v", got)
	}
}

func TestDeriveCalendarAddsTwelveColumnsDropsNoRows(t *testing.T) {
	dates := make([]time.Time, 10)
	for i := range dates {
		dates[i] = time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC)
	}
	frame, err := DeriveCalendar(dates)
	if err != nil {
		t.Fatalf("DeriveCalendar failed: %v", err)
	}
	if len(frame.Keys()) != 12 {
		t.Fatalf("expected 12 calendar predictors, got %d", len(frame.Keys()))
	}
	if frame.Len() != len(dates) {
		t.Fatalf("calendar deriver must not drop rows: %d != %d", frame.Len(), len(dates))
	}
}

func TestDeriveCalendarZeroDate(t *testing.T) {
	_, err := DeriveCalendar([]time.Time{{}})
	if !errors.Is(err, models.ErrUnparseableDate) {
		t.Fatalf("expected ErrUnparseableDate, got %v", err)
	}
}
