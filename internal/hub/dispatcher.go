package hub

import (
	"encoding/json"
	"sync/atomic"

	"github.com/euystacio/pulse-hub/internal/ingest"
	"github.com/euystacio/pulse-hub/internal/metrics"
)

// Recorder receives structured hub events (drops, disconnects, rejections)
// for the audit trail. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(kind, connID string, detail map[string]interface{})
}

// Report summarizes one fan-out pass.
type Report struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Dropped   int `json:"dropped"`
}

// Dispatcher orchestrates the ingest hot path: validate, push exactly one
// sample into the metrics window, then fan the serialized event out to the
// registry snapshot through the backpressure gate. None of it blocks on
// transport I/O.
type Dispatcher struct {
	window   *metrics.Window
	registry *Registry
	ceiling  int64 // backpressure ceiling in bytes
	recorder Recorder

	dropTotal atomic.Int64
}

// NewDispatcher creates a dispatcher over the given window and registry.
func NewDispatcher(window *metrics.Window, registry *Registry, ceilingBytes int64, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		window:   window,
		registry: registry,
		ceiling:  ceilingBytes,
		recorder: recorder,
	}
}

// Accept validates a raw payload and, if it passes, broadcasts the event.
// The returned error is a *ingest.ValidationError on rejection; a rejected
// payload touches neither the window nor any connection. Per-connection
// outcomes never surface as errors: a drop or a transport failure on one
// subscriber cannot abort delivery to the rest.
func (d *Dispatcher) Accept(raw []byte) (*ingest.Event, Report, error) {
	event, err := ingest.Validate(raw)
	if err != nil {
		d.record("ingest_rejected", "", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, Report{}, err
	}

	// Exactly one sample per accepted event, before the fan-out loop and
	// independent of the subscriber count.
	d.window.Push(event.Composites.Hope, event.Composites.Sorrow)

	report := d.Broadcast(event)
	return event, report, nil
}

// Broadcast serializes the event once and offers it to every connection in
// a point-in-time registry snapshot. Events reach each individual
// connection in acceptance order; there is no cross-connection ordering.
func (d *Dispatcher) Broadcast(event *ingest.Event) Report {
	payload, err := json.Marshal(event)
	if err != nil {
		// Events are built from validated floats and decoded JSON metadata;
		// marshal cannot fail for them in practice.
		d.record("broadcast_failed", "", map[string]interface{}{"error": err.Error()})
		return Report{}
	}

	var report Report
	for _, conn := range d.registry.Snapshot() {
		report.Attempted++
		if conn.TrySend(payload, d.ceiling) {
			report.Sent++
			continue
		}
		report.Dropped++
		d.dropTotal.Add(1)
		d.record("backpressure_drop", conn.ID, map[string]interface{}{
			"occupancyBytes": conn.Occupancy(),
			"payloadBytes":   len(payload),
			"ceilingBytes":   d.ceiling,
		})
	}
	return report
}

// Ceiling returns the configured backpressure ceiling in bytes.
func (d *Dispatcher) Ceiling() int64 {
	return d.ceiling
}

// DropTotal returns the monotonic count of frames dropped across all
// connections since startup.
func (d *Dispatcher) DropTotal() int64 {
	return d.dropTotal.Load()
}

// ClientCount reports the number of live subscribers.
func (d *Dispatcher) ClientCount() int {
	return d.registry.Count()
}

func (d *Dispatcher) record(kind, connID string, detail map[string]interface{}) {
	if d.recorder != nil {
		d.recorder.Record(kind, connID, detail)
	}
}
