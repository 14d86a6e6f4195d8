// Package metrics implements the rolling sample window for the Pulse Hub.
//
// The window keeps a fixed-capacity FIFO of recent composite samples and
// computes bounded-memory statistics over the most recent slice on demand.
// Writers (ingest path) and readers (metrics query path) may run concurrently.
package metrics
