package domain

import (
	"testing"
	"time"
)

func TestNewPagination_SinglePage(t *testing.T) {
	// A one-day window of 15-minute readings for two kinds fits in one page.
	p := NewPagination(1, 10000, 8640)

	if p.TotalPages != 1 {
		t.Errorf("expected 1 total page, got %d", p.TotalPages)
	}
	if p.HasNext {
		t.Error("expected no next page")
	}
	if p.HasPrev {
		t.Error("expected no previous page")
	}
}

func TestNewPagination_MiddlePage(t *testing.T) {
	p := NewPagination(2, 10000, 25000)

	if p.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", p.TotalPages)
	}
	if !p.HasNext {
		t.Error("expected a next page")
	}
	if !p.HasPrev {
		t.Error("expected a previous page")
	}
}

func TestNewPagination_EmptyResult(t *testing.T) {
	p := NewPagination(1, 100, 0)

	if p.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", p.TotalPages)
	}
	if p.HasNext || p.HasPrev {
		t.Error("expected no page links for an empty result")
	}
}

func TestNewPagination_PageBeyondEnd(t *testing.T) {
	p := NewPagination(5, 100, 150)

	if p.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", p.TotalPages)
	}
	if p.HasNext {
		t.Error("page beyond the end must not advertise a next page")
	}
	if !p.HasPrev {
		t.Error("page beyond the end still has previous pages")
	}
}

func TestNewHeatmap_AlwaysComplete(t *testing.T) {
	cells := []HeatmapCell{
		{Kind: KindActive, Hour: 8, DayOfWeek: 1, Mean: 1.5},
		{Kind: KindActive, Hour: 20, DayOfWeek: 5, Mean: 0.7},
		{Kind: KindReactive, Hour: 8, DayOfWeek: 1, Mean: 9.9}, // other kind, ignored
	}

	hm := NewHeatmap(KindActive, cells)

	if hm.Matrix[8][1] != 1.5 {
		t.Errorf("expected 1.5 at [8][1], got %v", hm.Matrix[8][1])
	}
	if hm.Matrix[20][5] != 0.7 {
		t.Errorf("expected 0.7 at [20][5], got %v", hm.Matrix[20][5])
	}
	// Unobserved slots must exist and be zero, including the reactive cell's slot.
	if hm.Matrix[0][0] != 0 || hm.Matrix[23][6] != 0 {
		t.Error("expected unobserved slots to be zero")
	}
}

func TestNewHeatmap_IgnoresOutOfRangeCells(t *testing.T) {
	cells := []HeatmapCell{
		{Kind: KindActive, Hour: 24, DayOfWeek: 0, Mean: 3},
		{Kind: KindActive, Hour: -1, DayOfWeek: 3, Mean: 3},
		{Kind: KindActive, Hour: 4, DayOfWeek: 7, Mean: 3},
	}

	hm := NewHeatmap(KindActive, cells)

	for hour := 0; hour < 24; hour++ {
		for dow := 0; dow < 7; dow++ {
			if hm.Matrix[hour][dow] != 0 {
				t.Fatalf("expected zero matrix, got %v at [%d][%d]", hm.Matrix[hour][dow], hour, dow)
			}
		}
	}
}

func TestNewReadingPoint_DerivesHourAndDay(t *testing.T) {
	// 2023-03-01 was a Wednesday.
	ts := time.Date(2023, 3, 1, 14, 30, 0, 0, time.UTC)
	p := NewReadingPoint(MeterReading{
		Timestamp: ts,
		MeterID:   "muid-1",
		Kind:      KindActive,
		Value:     1.25,
		Quality:   "measured",
	})

	if p.Hour != 14 {
		t.Errorf("expected hour 14, got %d", p.Hour)
	}
	if p.DayOfWeek != int(time.Wednesday) {
		t.Errorf("expected day %d, got %d", int(time.Wednesday), p.DayOfWeek)
	}
}

func TestSyncReport_TotalRows(t *testing.T) {
	r := SyncReport{RowsByKind: map[MeasurementKind]int64{
		KindActive:   96,
		KindReactive: 88,
	}}
	if got := r.TotalRows(); got != 184 {
		t.Errorf("expected 184 total rows, got %d", got)
	}
}
