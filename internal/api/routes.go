package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/euystacio/pulse-hub/internal/auth"
	"github.com/euystacio/pulse-hub/internal/hub"
	"github.com/euystacio/pulse-hub/internal/ingest"
	"github.com/euystacio/pulse-hub/internal/metrics"
)

// maxPulseBody bounds an ingest request body.
const maxPulseBody = 1 << 20

// welcomeFrame is the first frame pushed to every new subscriber.
type welcomeFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// RegisterRoutes registers all endpoints on the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	// Live subscription and ingest carry no authentication by design;
	// producers are gated upstream if at all.
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc(apiV1+"/pulse", s.handlePulse)
	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	if s.authMiddleware == nil {
		mux.HandleFunc(apiV1+"/metrics", s.handleMetrics)
		mux.HandleFunc(apiV1+"/connections", s.handleConnections)
		return
	}

	// Read endpoints: metrics for Council or Seedbringer, the connection
	// listing for Seedbringer only.
	mux.HandleFunc(apiV1+"/metrics", s.authMiddleware.RequireAuth(
		s.authMiddleware.RequireRole(auth.RoleCouncil, auth.RoleSeedbringer)(s.handleMetrics)))
	mux.HandleFunc(apiV1+"/connections", s.authMiddleware.RequireAuth(
		s.authMiddleware.RequireRole(auth.RoleSeedbringer)(s.handleConnections)))
}

// handleLive handles GET /live WebSocket subscriptions.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	// Refuse the upgrade outright when the registry is already full.
	if s.registry.Full() {
		writeError(w, http.StatusServiceUnavailable, "Service unavailable", "connection limit reached")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	registered, err := s.registry.Register(conn)
	if err != nil {
		// Lost the race between the capacity check and registration.
		if errors.Is(err, hub.ErrResourceExhausted) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "connection limit reached"),
				time.Now().Add(time.Second))
		}
		_ = conn.Close()
		return
	}

	welcome, _ := json.Marshal(welcomeFrame{
		Type:      "welcome",
		Message:   "connected",
		Timestamp: ingest.NewTimestamp(),
	})
	registered.TrySend(welcome, s.dispatcher.Ceiling())

	// Reader goroutine: inbound frames are ignored, but a read error is the
	// disconnect signal. Unregister runs before the transport is closed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.registry.Unregister(registered.ID)
				_ = conn.Close()
				return
			}
		}
	}()
}

// handlePulse handles POST /api/v1/pulse ingest.
func (s *Server) handlePulse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPulseBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload", "body unreadable or too large")
		return
	}

	_, report, err := s.dispatcher.Accept(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Pulse broadcast to %d clients (%d dropped)", report.Sent, report.Dropped),
		"clientCount": report.Attempted,
		"timestamp":   ingest.NewTimestamp(),
	})
}

// handleMetrics handles GET /api/v1/metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	snapshot := s.window.Snapshot(s.recentCount)
	s.recordQuery("metrics_queried", r, map[string]interface{}{
		"sampleCount": snapshot.SampleCount,
	})

	writeJSON(w, http.StatusOK, struct {
		metrics.Snapshot
		Timestamp string `json:"timestamp"`
	}{
		Snapshot:  snapshot,
		Timestamp: ingest.NewTimestamp(),
	})
}

// connectionInfo is one row of the connections listing.
type connectionInfo struct {
	ID             string `json:"id"`
	ConnectedAt    string `json:"connectedAt"`
	OccupancyBytes int64  `json:"occupancyBytes"`
	Drops          int64  `json:"drops"`
}

// handleConnections handles GET /api/v1/connections.
func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	conns := s.registry.Snapshot()
	items := make([]connectionInfo, 0, len(conns))
	for _, c := range conns {
		items = append(items, connectionInfo{
			ID:             c.ID,
			ConnectedAt:    c.ConnectedAt.Format(ingest.TimestampFormat),
			OccupancyBytes: c.Occupancy(),
			Drops:          c.Drops(),
		})
	}
	s.recordQuery("connections_queried", r, map[string]interface{}{
		"clientCount": len(items),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clientCount": len(items),
		"items":       items,
		"dropTotal":   s.dispatcher.DropTotal(),
		"timestamp":   ingest.NewTimestamp(),
	})
}

// handleHealth handles GET /api/v1/health. No auth required.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(s.startTime).Seconds()),
		"clientCount":   s.dispatcher.ClientCount(),
		"timestamp":     ingest.NewTimestamp(),
	})
}

// recordQuery writes a user-attributed ledger entry for a read endpoint.
func (s *Server) recordQuery(kind string, r *http.Request, detail map[string]interface{}) {
	if s.ledger == nil {
		return
	}
	user := "anonymous"
	if identity := auth.IdentityFromRequest(r); identity != nil {
		user = identity.Principal.Email
	}
	s.ledger.RecordUser(kind, user, detail)
}
