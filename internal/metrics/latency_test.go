package metrics

import (
	"testing"
	"time"
)

func TestLatencyHistoryEvictsOldest(t *testing.T) {
	h := NewLatencyHistory(3)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		h.Record(base.Add(time.Duration(i)*time.Second), float64(i*100))
	}

	got := h.Recent(0)
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	if got[0].LatencyMS != 200 || got[2].LatencyMS != 400 {
		t.Fatalf("expected oldest=200 newest=400, got %+v", got)
	}
}

func TestLatencyHistorySummarize(t *testing.T) {
	h := NewLatencyHistory(10)
	if s := h.Summarize(); s.Count != 0 || s.AvgLatencyMS != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}

	now := time.Now()
	h.Record(now, 100)
	h.Record(now, 300)

	s := h.Summarize()
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}
	if s.AvgLatencyMS != 200 {
		t.Fatalf("expected avg 200, got %f", s.AvgLatencyMS)
	}
}

func TestLatencyHistoryRecentLimit(t *testing.T) {
	h := NewLatencyHistory(5)
	now := time.Now()
	for i := 0; i < 4; i++ {
		h.Record(now, float64(i))
	}

	got := h.Recent(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].LatencyMS != 2 || got[1].LatencyMS != 3 {
		t.Fatalf("expected the two newest samples, got %+v", got)
	}
}
