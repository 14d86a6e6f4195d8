package hub

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrResourceExhausted is returned by Register when the registry is at its
// connection limit. Existing connections are unaffected.
var ErrResourceExhausted = errors.New("connection registry exhausted")

// sendQueueLen is the per-connection send queue capacity in frames. The byte
// ceiling is the real backpressure boundary; the queue length only bounds the
// bookkeeping slice of frames behind it.
const sendQueueLen = 256

// Transport is the minimal surface the hub needs from a live subscriber
// connection. *websocket.Conn satisfies it.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection is one registered subscriber. The transport handle is owned
// exclusively by the registry for the connection's lifetime: all writes go
// through the send queue and the single writer goroutine.
type Connection struct {
	ID          string
	ConnectedAt time.Time

	transport Transport
	send      chan []byte
	buffered  atomic.Int64 // bytes enqueued but not yet written
	drops     atomic.Int64

	done     chan struct{}
	doneOnce sync.Once
}

// Occupancy returns the connection's queued-but-unsent byte count.
func (c *Connection) Occupancy() int64 {
	return c.buffered.Load()
}

// Drops returns the number of frames dropped for this connection.
func (c *Connection) Drops() int64 {
	return c.drops.Load()
}

// TrySend enqueues a payload for the writer goroutine, or drops it. The
// backpressure gate runs on every call; it is part of the send primitive,
// not a caller convenience. Returns true if the payload was queued.
func (c *Connection) TrySend(payload []byte, ceilingBytes int64) bool {
	size := int64(len(payload))
	if ShouldSend(c.Occupancy(), size, ceilingBytes) == Drop {
		c.drops.Add(1)
		return false
	}

	c.buffered.Add(size)
	select {
	case <-c.done:
		c.buffered.Add(-size)
		return false
	case c.send <- payload:
		return true
	default:
		// Queue full counts as backpressure too.
		c.buffered.Add(-size)
		c.drops.Add(1)
		return false
	}
}

// cancel marks the connection dead. Idempotent; the send channel itself is
// never closed so late TrySend calls cannot panic.
func (c *Connection) cancel() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Registry tracks live subscriber connections. It is one of the two pieces
// of shared mutable state in the process; every mutation goes through
// Register and Unregister.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	maxConns int

	recorder Recorder
}

// NewRegistry creates a registry that accepts at most maxConns concurrent
// connections. maxConns <= 0 means unlimited.
func NewRegistry(maxConns int, recorder Recorder) *Registry {
	return &Registry{
		conns:    make(map[string]*Connection),
		maxConns: maxConns,
		recorder: recorder,
	}
}

// Register adds a new connection for the given transport and starts its
// writer goroutine. It fails only on resource exhaustion.
func (r *Registry) Register(t Transport) (*Connection, error) {
	conn := &Connection{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now().UTC(),
		transport:   t,
		send:        make(chan []byte, sendQueueLen),
		done:        make(chan struct{}),
	}

	r.mu.Lock()
	if r.maxConns > 0 && len(r.conns) >= r.maxConns {
		r.mu.Unlock()
		return nil, ErrResourceExhausted
	}
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	r.record("connection_registered", conn.ID, nil)
	go r.writeLoop(conn)
	return conn, nil
}

// Unregister removes a connection by id and cancels it. Removing an absent
// id is a no-op, not an error.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	conn, exists := r.conns[id]
	if exists {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if !exists {
		return
	}
	conn.cancel()
	r.record("connection_unregistered", id, nil)
}

// Snapshot returns the connections registered at call time. Traversal of the
// returned slice is unaffected by concurrent register/unregister.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Full reports whether the registry is at its connection limit. Register
// re-checks under the lock; Full is for callers that want to refuse work
// before committing a transport.
func (r *Registry) Full() bool {
	if r.maxConns <= 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns) >= r.maxConns
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close unregisters every connection and closes its transport. Used on
// shutdown.
func (r *Registry) Close() {
	for _, conn := range r.Snapshot() {
		r.Unregister(conn.ID)
		_ = conn.transport.Close()
	}
}

// writeLoop drains the send queue onto the transport. It is the only
// goroutine that ever touches the transport handle. A write failure
// unregisters the connection first, before any other cleanup, so no further
// sends are attempted against a dead handle.
func (r *Registry) writeLoop(conn *Connection) {
	for {
		select {
		case <-conn.done:
			return
		case payload := <-conn.send:
			conn.buffered.Add(-int64(len(payload)))
			if err := conn.transport.WriteMessage(websocket.TextMessage, payload); err != nil {
				r.Unregister(conn.ID)
				r.record("send_failed", conn.ID, map[string]interface{}{
					"error": err.Error(),
				})
				_ = conn.transport.Close()
				return
			}
		}
	}
}

func (r *Registry) record(kind, connID string, detail map[string]interface{}) {
	if r.recorder != nil {
		r.recorder.Record(kind, connID, detail)
	}
}
