package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are gone at this point; best effort only.
		fmt.Fprintf(w, `{"error":"Internal server error"}`)
	}
}

// writeError writes the flat error shape used across read and ingest
// endpoints.
func writeError(w http.ResponseWriter, statusCode int, errLabel, message string) {
	body := map[string]string{"error": errLabel}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, statusCode, body)
}

// writeMethodNotAllowed rejects a request with the wrong verb.
func writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed",
		fmt.Sprintf("Only %s is allowed", allowed))
}
