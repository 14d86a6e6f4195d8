package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Identity is a verified principal together with its resolved role, stored
// in the request context by RequireAuth.
type Identity struct {
	Principal Principal
	Role      Role
}

// ContextKey is used for storing the identity in a request context.
type ContextKey string

const identityKey ContextKey = "identity"

// ErrNoPrincipal means the caller never authenticated. Maps to 401.
var ErrNoPrincipal = errors.New("no authenticated principal")

// RoleError means the caller authenticated but lacks the required role.
// Maps to 403.
type RoleError struct {
	Required Role
	Actual   Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s access required, caller has %s", e.Required, e.Actual)
}

// Authorize checks an identity against a set of acceptable roles. It is
// transport-independent: the middleware below and any future caller get the
// same no-principal versus wrong-role distinction.
func Authorize(identity *Identity, required ...Role) error {
	if identity == nil {
		return ErrNoPrincipal
	}
	for _, role := range required {
		if identity.Role == role && role != RoleUnauthorized {
			return nil
		}
	}
	primary := RoleUnauthorized
	if len(required) > 0 {
		primary = required[0]
	}
	return &RoleError{Required: primary, Actual: identity.Role}
}

// Middleware enforces authentication and role requirements on HTTP routes.
type Middleware struct {
	verifier TokenVerifier
	resolver *Resolver
}

// NewMiddleware creates middleware over a verifier collaborator and a role
// resolver.
func NewMiddleware(verifier TokenVerifier, resolver *Resolver) *Middleware {
	return &Middleware{
		verifier: verifier,
		resolver: resolver,
	}
}

// RequireAuth verifies the bearer token, resolves the caller's role and
// stores the identity in the request context. Missing or unverifiable
// tokens end the request with 401.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		principal, err := m.verifier.Verify(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity := &Identity{
			Principal: *principal,
			Role:      m.resolver.Resolve(principal.Email),
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole ends the request unless the caller's resolved role is one of
// the required roles: 401 when no identity is present at all, 403 when the
// caller is authenticated but the role is insufficient.
func (m *Middleware) RequireRole(required ...Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			err := Authorize(IdentityFromRequest(r), required...)
			if err == nil {
				next(w, r)
				return
			}

			var roleErr *RoleError
			if errors.As(err, &roleErr) {
				writeAuthError(w, http.StatusForbidden,
					fmt.Sprintf("%s access required", roleErr.Required))
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
		}
	}
}

// IdentityFromRequest extracts the identity stored by RequireAuth, or nil.
func IdentityFromRequest(r *http.Request) *Identity {
	identity, ok := r.Context().Value(identityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}

// writeAuthError writes the flat error shape the read endpoints use.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
