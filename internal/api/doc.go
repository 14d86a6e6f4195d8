// Package api implements the HTTP surface of the Pulse Hub.
//
// Three call paths meet here: producers POST pulses for broadcast,
// subscribers upgrade to WebSocket on /live, and role-gated readers query
// the rolling metrics. The handlers translate between wire shapes and the
// hub, metrics and auth packages; they hold no state of their own.
package api
