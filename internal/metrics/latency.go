package metrics

import (
	"sync"
	"time"
)

const DefaultCapacity = 100

type Sample struct {
	At        time.Time
	LatencyMS float64
}

type Summary struct {
	AvgLatencyMS float64
	Count        int
}

// LatencyHistory is a fixed-capacity ring of generation latency samples.
// Oldest samples are evicted once the ring is full. State lives only in
// memory and is lost on restart.
type LatencyHistory struct {
	mu      sync.Mutex
	samples []Sample
	head    int
	count   int
}

func NewLatencyHistory(capacity int) *LatencyHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LatencyHistory{samples: make([]Sample, capacity)}
}

func (h *LatencyHistory) Record(at time.Time, latencyMS float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.head] = Sample{At: at, LatencyMS: latencyMS}
	h.head = (h.head + 1) % len(h.samples)
	if h.count < len(h.samples) {
		h.count++
	}
}

// Recent returns up to n samples, oldest first.
func (h *LatencyHistory) Recent(n int) []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > h.count {
		n = h.count
	}
	out := make([]Sample, 0, n)
	start := h.head - n
	if start < 0 {
		start += len(h.samples)
	}
	for i := 0; i < n; i++ {
		out = append(out, h.samples[(start+i)%len(h.samples)])
	}
	return out
}

func (h *LatencyHistory) Summarize() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return Summary{}
	}
	var total float64
	start := h.head - h.count
	if start < 0 {
		start += len(h.samples)
	}
	for i := 0; i < h.count; i++ {
		total += h.samples[(start+i)%len(h.samples)].LatencyMS
	}
	return Summary{
		AvgLatencyMS: total / float64(h.count),
		Count:        h.count,
	}
}
