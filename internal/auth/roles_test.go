package auth

import "testing"

func TestResolveRole(t *testing.T) {
	resolver := NewResolver(
		[]string{"seed@euystac.io"},
		[]string{"council@euystac.io", "second.council@euystac.io"},
	)

	tests := []struct {
		name  string
		email string
		want  Role
	}{
		{"seedbringer", "seed@euystac.io", RoleSeedbringer},
		{"council", "council@euystac.io", RoleCouncil},
		{"case insensitive", "SEED@Euystac.IO", RoleSeedbringer},
		{"surrounding whitespace", "  council@euystac.io ", RoleCouncil},
		{"unlisted", "stranger@example.com", RoleUnauthorized},
		{"empty", "", RoleUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.Resolve(tt.email); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestResolverOverlapIsReportedAndResolvesSeedbringer(t *testing.T) {
	resolver := NewResolver(
		[]string{"both@euystac.io", "seed@euystac.io"},
		[]string{"Both@euystac.io"},
	)

	overlap := resolver.Overlap()
	if len(overlap) != 1 || overlap[0] != "both@euystac.io" {
		t.Errorf("Expected overlap [both@euystac.io], got %v", overlap)
	}

	// Seedbringer list is checked first; the overlap is not silently dropped
	// from either list.
	if got := resolver.Resolve("both@euystac.io"); got != RoleSeedbringer {
		t.Errorf("Expected overlap to resolve Seedbringer, got %v", got)
	}
}

func TestRoleString(t *testing.T) {
	if RoleSeedbringer.String() != "Seedbringer" {
		t.Errorf("Unexpected name: %s", RoleSeedbringer)
	}
	if RoleCouncil.String() != "Council" {
		t.Errorf("Unexpected name: %s", RoleCouncil)
	}
	if RoleUnauthorized.String() != "Unauthorized" {
		t.Errorf("Unexpected name: %s", RoleUnauthorized)
	}
}

func TestAuthorize(t *testing.T) {
	council := &Identity{Principal: Principal{Email: "c@euystac.io"}, Role: RoleCouncil}

	if err := Authorize(nil, RoleCouncil); err != ErrNoPrincipal {
		t.Errorf("Expected ErrNoPrincipal for nil identity, got %v", err)
	}

	if err := Authorize(council, RoleCouncil, RoleSeedbringer); err != nil {
		t.Errorf("Expected allow for council on council-or-seedbringer, got %v", err)
	}

	err := Authorize(council, RoleSeedbringer)
	roleErr, ok := err.(*RoleError)
	if !ok {
		t.Fatalf("Expected *RoleError, got %T: %v", err, err)
	}
	if roleErr.Required != RoleSeedbringer || roleErr.Actual != RoleCouncil {
		t.Errorf("Unexpected role error: %+v", roleErr)
	}

	// An Unauthorized requirement can never be satisfied.
	unauthorized := &Identity{Role: RoleUnauthorized}
	if err := Authorize(unauthorized, RoleUnauthorized); err == nil {
		t.Error("Expected deny for Unauthorized role requirement")
	}
}
