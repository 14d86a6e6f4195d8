package config

import "fmt"

// Validate enforces startup constraints on a merged configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.BufferMaxKB <= 0 {
		return fmt.Errorf("buffer ceiling must be positive, got %d KiB", cfg.BufferMaxKB)
	}

	if cfg.WindowCapacity <= 0 {
		return fmt.Errorf("window capacity must be positive, got %d", cfg.WindowCapacity)
	}
	if cfg.WindowRecentCount <= 0 {
		return fmt.Errorf("window recent count must be positive, got %d", cfg.WindowRecentCount)
	}
	if cfg.WindowRecentCount > cfg.WindowCapacity {
		return fmt.Errorf("window recent count %d exceeds capacity %d",
			cfg.WindowRecentCount, cfg.WindowCapacity)
	}

	if cfg.MaxConnections < 0 {
		return fmt.Errorf("max connections must be non-negative, got %d", cfg.MaxConnections)
	}

	switch cfg.JWTAlgorithm {
	case "", "HS256", "RS256":
	default:
		return fmt.Errorf("unsupported JWT algorithm: %s", cfg.JWTAlgorithm)
	}
	if cfg.JWTAlgorithm == "HS256" && cfg.JWTSecret == "" {
		return fmt.Errorf("HS256 requires JWT_SECRET")
	}
	if cfg.JWTAlgorithm == "RS256" && cfg.JWTPublicKeyPEM == "" {
		return fmt.Errorf("RS256 requires JWT_PUBLIC_KEY_PEM")
	}

	return nil
}
