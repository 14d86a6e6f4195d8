package auth

import (
	"log"
	"sort"
	"strings"
)

// Role is the closed privilege tier derived from a principal's email.
// Downstream logic switches on the enum instead of re-parsing email lists.
type Role int

const (
	RoleUnauthorized Role = iota
	RoleCouncil
	RoleSeedbringer
)

// String returns the role name as it appears in responses and logs.
func (r Role) String() string {
	switch r {
	case RoleSeedbringer:
		return "Seedbringer"
	case RoleCouncil:
		return "Council"
	default:
		return "Unauthorized"
	}
}

// Principal is an externally verified caller identity. It is produced by the
// token-verification collaborator, never by this package.
type Principal struct {
	Email  string `json:"email"`
	Sub    string `json:"sub"`
	Issuer string `json:"issuer,omitempty"`
}

// Resolver maps emails onto roles via two disjoint allowlists.
type Resolver struct {
	seedbringers map[string]struct{}
	council      map[string]struct{}
	overlap      []string
}

// NewResolver builds a resolver from the configured allowlists. Emails are
// compared case-insensitively. An email present in both lists is a
// configuration error: it is logged and resolves to Seedbringer because that
// list is checked first, but it is never silently accepted as correct.
func NewResolver(seedbringerEmails, councilEmails []string) *Resolver {
	r := &Resolver{
		seedbringers: toSet(seedbringerEmails),
		council:      toSet(councilEmails),
	}

	for email := range r.seedbringers {
		if _, both := r.council[email]; both {
			r.overlap = append(r.overlap, email)
		}
	}
	sort.Strings(r.overlap)
	for _, email := range r.overlap {
		log.Printf("auth: configuration error: %q is in both the Seedbringer and Council allowlists; resolving to Seedbringer", email)
	}

	return r
}

// Resolve returns the role for an email: Seedbringer allowlist first, then
// Council, otherwise Unauthorized.
func (r *Resolver) Resolve(email string) Role {
	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := r.seedbringers[key]; ok {
		return RoleSeedbringer
	}
	if _, ok := r.council[key]; ok {
		return RoleCouncil
	}
	return RoleUnauthorized
}

// Overlap returns the emails found in both allowlists, for config reporting.
func (r *Resolver) Overlap() []string {
	return r.overlap
}

func toSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		key := strings.ToLower(strings.TrimSpace(email))
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}
