// Package config implements configuration loading for the Pulse Hub.
//
// Values resolve in three layers: compiled-in defaults, environment
// variable overrides, then an optional config.json in the working
// directory. The merged result is validated before anything starts.
package config
