package metrics

import (
	"math"
	"sync"
	"testing"
)

func TestNewWindow(t *testing.T) {
	w := NewWindow(10)

	if w.Capacity() != 10 {
		t.Errorf("Expected capacity 10, got %d", w.Capacity())
	}
	if w.Size() != 0 {
		t.Errorf("Expected initial size 0, got %d", w.Size())
	}
}

func TestWindowPushAndEvict(t *testing.T) {
	w := NewWindow(3)

	// Push more than capacity; oldest must be evicted first.
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	for _, v := range values {
		w.Push(v, 0)
	}

	if w.Size() != 3 {
		t.Errorf("Expected size 3 after eviction, got %d", w.Size())
	}
	if w.TotalPushed() != 5 {
		t.Errorf("Expected total pushed 5, got %d", w.TotalPushed())
	}

	// Survivors are 0.3, 0.4, 0.5 (FIFO eviction).
	snap := w.Snapshot(3)
	expectedAvg := (0.3 + 0.4 + 0.5) / 3
	if math.Abs(snap.AvgHope-expectedAvg) > 1e-9 {
		t.Errorf("Expected avgHope %.4f, got %.4f", expectedAvg, snap.AvgHope)
	}
}

func TestWindowSnapshotRecentSlice(t *testing.T) {
	w := NewWindow(100)
	for i := 0; i < 50; i++ {
		w.Push(0.2, 0.8)
	}
	// Last 10 samples are different.
	for i := 0; i < 10; i++ {
		w.Push(1.0, 0.0)
	}

	snap := w.Snapshot(10)
	if snap.SampleCount != 10 {
		t.Errorf("Expected sampleCount 10, got %d", snap.SampleCount)
	}
	if snap.AvgHope != 1.0 || snap.AvgSorrow != 0.0 {
		t.Errorf("Expected averages over the recent slice only, got hope=%.2f sorrow=%.2f",
			snap.AvgHope, snap.AvgSorrow)
	}
	if snap.HopeRatio != 1.0 {
		t.Errorf("Expected hopeRatio 1.0, got %.4f", snap.HopeRatio)
	}
}

func TestWindowSnapshotRecentLargerThanSize(t *testing.T) {
	w := NewWindow(1000)
	w.Push(0.8, 0.2)

	snap := w.Snapshot(100)
	if snap.SampleCount != 1 {
		t.Errorf("Expected sampleCount 1, got %d", snap.SampleCount)
	}
	if math.Abs(snap.HopeRatio-0.8) > 1e-9 {
		t.Errorf("Expected hopeRatio 0.8, got %.4f", snap.HopeRatio)
	}
}

func TestWindowZeroDenominator(t *testing.T) {
	w := NewWindow(10)

	// Empty window.
	snap := w.Snapshot(100)
	if snap.HopeRatio != 0 {
		t.Errorf("Expected hopeRatio 0 on empty window, got %v", snap.HopeRatio)
	}
	if math.IsNaN(snap.HopeRatio) {
		t.Error("hopeRatio must never be NaN")
	}

	// All-zero samples.
	w.Push(0, 0)
	w.Push(0, 0)
	snap = w.Snapshot(100)
	if snap.SampleCount != 2 {
		t.Errorf("Expected sampleCount 2, got %d", snap.SampleCount)
	}
	if snap.HopeRatio != 0 || math.IsNaN(snap.HopeRatio) {
		t.Errorf("Expected hopeRatio 0 for all-zero samples, got %v", snap.HopeRatio)
	}
}

func TestWindowWrapAround(t *testing.T) {
	w := NewWindow(4)

	// Fill twice over so head wraps.
	for i := 1; i <= 9; i++ {
		w.Push(float64(i)/10, 0)
	}

	// Survivors: 0.6, 0.7, 0.8, 0.9 — request the 2 newest.
	snap := w.Snapshot(2)
	expected := (0.8 + 0.9) / 2
	if math.Abs(snap.AvgHope-expected) > 1e-9 {
		t.Errorf("Expected avgHope %.4f after wrap, got %.4f", expected, snap.AvgHope)
	}
}

func TestWindowConcurrentPushSnapshot(t *testing.T) {
	w := NewWindow(1000)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Writer: ingest path.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			w.Push(0.5, 0.5)
		}
		close(done)
	}()

	// Readers: metrics query path. Values must never be torn; with every
	// sample at {0.5, 0.5} any observed average must be exactly 0.5.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := w.Snapshot(100)
				if snap.SampleCount > 0 && snap.AvgHope != 0.5 {
					t.Errorf("Torn read: avgHope %v", snap.AvgHope)
					return
				}
			}
		}()
	}

	wg.Wait()

	if w.TotalPushed() != 5000 {
		t.Errorf("Expected 5000 total pushes, got %d", w.TotalPushed())
	}
}
