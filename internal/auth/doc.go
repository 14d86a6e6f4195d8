// Package auth implements authorization for the Pulse Hub read endpoints.
//
// Token verification is delegated to a TokenVerifier collaborator that
// produces a Principal; this package maps the principal's email onto a
// closed Role set via configured allowlists and enforces role requirements
// as HTTP middleware. A missing principal and an insufficient role are kept
// distinct all the way to the transport (401 versus 403).
package auth
