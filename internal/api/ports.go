// Ports (interfaces) for API server dependencies.
package api

import (
	"github.com/euystacio/pulse-hub/internal/hub"
	"github.com/euystacio/pulse-hub/internal/ingest"
	"github.com/euystacio/pulse-hub/internal/metrics"
)

// DispatcherPort is the minimal interface the API needs from the broadcast
// dispatcher.
type DispatcherPort interface {
	Accept(raw []byte) (*ingest.Event, hub.Report, error)
	Ceiling() int64
	ClientCount() int
	DropTotal() int64
}

// RegistryPort is the minimal interface the API needs from the connection
// registry.
type RegistryPort interface {
	Register(t hub.Transport) (*hub.Connection, error)
	Unregister(id string)
	Snapshot() []*hub.Connection
	Count() int
	Full() bool
}

// WindowPort is the minimal interface the API needs from the sample window.
type WindowPort interface {
	Snapshot(recent int) metrics.Snapshot
}

// LedgerPort receives user-attributed audit events from the read endpoints.
type LedgerPort interface {
	RecordUser(kind, user string, detail map[string]interface{})
}

// Compile-time assertions for port conformance.
var _ DispatcherPort = (*hub.Dispatcher)(nil)
var _ RegistryPort = (*hub.Registry)(nil)
var _ WindowPort = (*metrics.Window)(nil)
