package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeVerifier resolves fixed tokens to principals without cryptography.
type fakeVerifier struct {
	principals map[string]*Principal
}

func (f *fakeVerifier) Verify(rawToken string) (*Principal, error) {
	if p, ok := f.principals[rawToken]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("token verification failed")
}

func newTestMiddleware() *Middleware {
	verifier := &fakeVerifier{principals: map[string]*Principal{
		"seed-token":     {Email: "seed@euystac.io", Sub: "user-1"},
		"council-token":  {Email: "council@euystac.io", Sub: "user-2"},
		"stranger-token": {Email: "stranger@example.com", Sub: "user-3"},
	}}
	resolver := NewResolver([]string{"seed@euystac.io"}, []string{"council@euystac.io"})
	return NewMiddleware(verifier, resolver)
}

// gate builds a handler protected by RequireAuth + RequireRole.
func gate(m *Middleware, required ...Role) http.HandlerFunc {
	return m.RequireAuth(m.RequireRole(required...)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func do(handler http.HandlerFunc, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRoleGateMatrix(t *testing.T) {
	m := newTestMiddleware()
	seedOnly := gate(m, RoleSeedbringer)
	councilOrSeed := gate(m, RoleCouncil, RoleSeedbringer)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		token   string
		status  int
	}{
		{"seedbringer on seed-only", seedOnly, "seed-token", http.StatusOK},
		{"seedbringer on council-or-seed", councilOrSeed, "seed-token", http.StatusOK},
		{"council on seed-only", seedOnly, "council-token", http.StatusForbidden},
		{"council on council-or-seed", councilOrSeed, "council-token", http.StatusOK},
		{"unlisted on seed-only", seedOnly, "stranger-token", http.StatusForbidden},
		{"unlisted on council-or-seed", councilOrSeed, "stranger-token", http.StatusForbidden},
		{"no principal on seed-only", seedOnly, "", http.StatusUnauthorized},
		{"no principal on council-or-seed", councilOrSeed, "", http.StatusUnauthorized},
		{"unknown token", councilOrSeed, "bogus", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.handler, tt.token)
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestDenyBodies(t *testing.T) {
	m := newTestMiddleware()

	rec := do(gate(m, RoleSeedbringer), "")
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("401 body is not JSON: %v", err)
	}
	if body["error"] != "Authentication required" {
		t.Errorf("Unexpected 401 body: %v", body)
	}

	rec = do(gate(m, RoleSeedbringer), "council-token")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("403 body is not JSON: %v", err)
	}
	if body["error"] != "Seedbringer access required" {
		t.Errorf("Unexpected 403 body: %v", body)
	}
}

func TestRequireAuthStoresIdentity(t *testing.T) {
	m := newTestMiddleware()

	var seen *Identity
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromRequest(r)
	})
	do(handler, "council-token")

	if seen == nil {
		t.Fatal("Expected identity in request context")
	}
	if seen.Principal.Email != "council@euystac.io" {
		t.Errorf("Unexpected principal: %+v", seen.Principal)
	}
	if seen.Role != RoleCouncil {
		t.Errorf("Expected RoleCouncil, got %v", seen.Role)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"valid", "Bearer abc123", false},
		{"missing header", "", true},
		{"wrong scheme", "Basic abc123", true},
		{"empty token", "Bearer ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := extractBearerToken(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("extractBearerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
