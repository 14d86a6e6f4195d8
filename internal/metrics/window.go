package metrics

import (
	"sync"
	"time"
)

// Sample is a single accepted composite measurement, stored by value.
type Sample struct {
	Hope   float64
	Sorrow float64
}

// Snapshot is a read-only statistics view computed over the most recent
// samples at query time.
type Snapshot struct {
	AvgHope     float64 `json:"avgHope"`
	AvgSorrow   float64 `json:"avgSorrow"`
	SampleCount int     `json:"sampleCount"`
	HopeRatio   float64 `json:"hopeRatio"`
}

// Window is a fixed-capacity ring of samples with strict FIFO eviction.
//
// Push and Snapshot share a single mutex so a reader never observes a
// partially written sample. Both operations touch at most min(recent, size)
// entries; neither allocates proportional to the full capacity.
type Window struct {
	mu       sync.Mutex
	samples  []Sample
	capacity int
	head     int // index of the oldest sample
	size     int
	total    int64 // monotonic count of pushes, survives eviction
	created  time.Time
}

// NewWindow creates a window with the given fixed capacity.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{
		samples:  make([]Sample, capacity),
		capacity: capacity,
		created:  time.Now(),
	}
}

// Push inserts one sample, evicting the oldest first when at capacity.
func (w *Window) Push(hope, sorrow float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tail := (w.head + w.size) % w.capacity
	w.samples[tail] = Sample{Hope: hope, Sorrow: sorrow}
	if w.size == w.capacity {
		w.head = (w.head + 1) % w.capacity
	} else {
		w.size++
	}
	w.total++
}

// Snapshot computes statistics over the min(recent, size) most recent samples.
//
// When the averaged composites sum to zero (empty window, or all-zero
// samples) HopeRatio is 0 by definition, never NaN.
func (w *Window) Snapshot(recent int) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := recent
	if n > w.size {
		n = w.size
	}
	if n <= 0 {
		return Snapshot{}
	}

	// Walk only the n newest entries, oldest of them first.
	start := (w.head + w.size - n) % w.capacity
	var sumHope, sumSorrow float64
	for i := 0; i < n; i++ {
		s := w.samples[(start+i)%w.capacity]
		sumHope += s.Hope
		sumSorrow += s.Sorrow
	}

	snap := Snapshot{
		AvgHope:     sumHope / float64(n),
		AvgSorrow:   sumSorrow / float64(n),
		SampleCount: n,
	}
	if denom := snap.AvgHope + snap.AvgSorrow; denom > 0 {
		snap.HopeRatio = snap.AvgHope / denom
	}
	return snap
}

// Size returns the number of samples currently held.
func (w *Window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Capacity returns the fixed window capacity.
func (w *Window) Capacity() int {
	return w.capacity
}

// TotalPushed returns the monotonic count of samples ever pushed.
func (w *Window) TotalPushed() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}
