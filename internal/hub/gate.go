package hub

// Decision is the backpressure gate's verdict for a single send attempt.
type Decision int

const (
	// Send means the payload may be enqueued to the connection.
	Send Decision = iota
	// Drop means the payload is discarded, never queued or retried.
	Drop
)

// String returns the decision name for logs.
func (d Decision) String() string {
	if d == Drop {
		return "drop"
	}
	return "send"
}

// ShouldSend decides send versus drop for one connection. The decision is an
// O(1) snapshot read of the connection's queued-but-unsent byte count; it
// never waits for the transport to drain.
//
// The payload size estimate is part of the contract so callers cannot skip
// measuring what they are about to queue, but the rule itself is occupancy
// against the ceiling: an already-over-ceiling connection receives nothing
// more until its writer catches up.
func ShouldSend(occupancyBytes, payloadSizeEstimate, ceilingBytes int64) Decision {
	if occupancyBytes > ceilingBytes {
		return Drop
	}
	return Send
}
