package config

// Config holds everything the Pulse Hub needs at startup.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr"`

	// BufferMaxKB is the per-connection backpressure ceiling in KiB.
	BufferMaxKB int `json:"bufferMaxKb"`

	// WindowCapacity is the fixed size of the rolling sample window.
	WindowCapacity int `json:"windowCapacity"`

	// WindowRecentCount is how many recent samples a metrics query averages.
	WindowRecentCount int `json:"windowRecentCount"`

	// MaxConnections bounds the registry; 0 means unlimited.
	MaxConnections int `json:"maxConnections"`

	// Role allowlists, matched case-insensitively against principal emails.
	SeedbringerEmails []string `json:"seedbringerEmails"`
	CouncilEmails     []string `json:"councilEmails"`

	// AuditLogDir is where the council ledger lives.
	AuditLogDir string `json:"auditLogDir"`

	// Token verification. Algorithm may be empty: read endpoints then
	// reject every request as unauthenticated.
	JWTAlgorithm    string `json:"jwtAlgorithm"`
	JWTSecret       string `json:"jwtSecret"`
	JWTPublicKeyPEM string `json:"jwtPublicKeyPem"`
}

// Defaults returns the compiled-in baseline.
func Defaults() *Config {
	return &Config{
		Addr:              ":8000",
		BufferMaxKB:       512,
		WindowCapacity:    1000,
		WindowRecentCount: 100,
		MaxConnections:    256,
		AuditLogDir:       "logs",
	}
}

// CeilingBytes returns the backpressure ceiling in bytes.
func (c *Config) CeilingBytes() int64 {
	return int64(c.BufferMaxKB) * 1024
}
