// Package hub implements the real-time broadcast core of the Pulse Hub.
//
// The hub fans accepted pulse events out to every live subscriber connection
// and feeds the rolling metrics window. A per-connection send queue drained
// by a dedicated writer goroutine keeps the ingest path free of transport
// I/O; the backpressure gate drops frames to any subscriber whose queued
// bytes exceed the configured ceiling so one slow consumer can never stall
// the producer or its peers.
package hub
