// Package ingest implements shape and range validation for inbound pulse
// payloads before they reach the broadcast dispatcher.
//
// A payload that fails validation is rejected with a field-level reason;
// accepted payloads become immutable Events stamped with a server-side
// timestamp. Client-supplied timestamps are always ignored so a producer
// cannot skew the metrics timeline.
package ingest
