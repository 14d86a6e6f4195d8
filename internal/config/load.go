package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Load merges Defaults() + environment overrides + optional config.json,
// then validates the result.
func Load() (*Config, error) {
	cfg := Defaults()

	applyEnvOverrides(cfg)

	// config.json in the working directory takes precedence when present.
	if _, err := os.Stat("config.json"); err == nil {
		fileCfg, err := loadFromFile("config.json")
		if err != nil {
			return nil, fmt.Errorf("failed to load config.json: %w", err)
		}
		cfg = mergeConfigs(cfg, fileCfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PULSE_ADDR"); val != "" {
		cfg.Addr = val
	}

	cfg.BufferMaxKB = GetEnvInt("BUFFER_MAX_KB", cfg.BufferMaxKB)
	cfg.WindowCapacity = GetEnvInt("WINDOW_CAPACITY", cfg.WindowCapacity)
	cfg.WindowRecentCount = GetEnvInt("WINDOW_RECENT_COUNT", cfg.WindowRecentCount)
	cfg.MaxConnections = GetEnvInt("MAX_CONNECTIONS", cfg.MaxConnections)

	if val := os.Getenv("SEEDBRINGER_EMAILS"); val != "" {
		cfg.SeedbringerEmails = splitEmails(val)
	}
	if val := os.Getenv("COUNCIL_EMAILS"); val != "" {
		cfg.CouncilEmails = splitEmails(val)
	}

	if val := os.Getenv("AUDIT_LOG_DIR"); val != "" {
		cfg.AuditLogDir = val
	}

	if val := os.Getenv("JWT_ALGORITHM"); val != "" {
		cfg.JWTAlgorithm = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		cfg.JWTSecret = val
	}
	if val := os.Getenv("JWT_PUBLIC_KEY_PEM"); val != "" {
		cfg.JWTPublicKeyPEM = val
	}
}

// splitEmails parses a comma-separated allowlist, dropping empty entries.
func splitEmails(val string) []string {
	parts := strings.Split(val, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}

// loadFromFile loads configuration from a JSON file.
func loadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs merges file configuration over the current configuration.
// Only non-zero file values override.
func mergeConfigs(current, file *Config) *Config {
	merged := *current

	if file.Addr != "" {
		merged.Addr = file.Addr
	}
	if file.BufferMaxKB != 0 {
		merged.BufferMaxKB = file.BufferMaxKB
	}
	if file.WindowCapacity != 0 {
		merged.WindowCapacity = file.WindowCapacity
	}
	if file.WindowRecentCount != 0 {
		merged.WindowRecentCount = file.WindowRecentCount
	}
	if file.MaxConnections != 0 {
		merged.MaxConnections = file.MaxConnections
	}
	if len(file.SeedbringerEmails) > 0 {
		merged.SeedbringerEmails = file.SeedbringerEmails
	}
	if len(file.CouncilEmails) > 0 {
		merged.CouncilEmails = file.CouncilEmails
	}
	if file.AuditLogDir != "" {
		merged.AuditLogDir = file.AuditLogDir
	}
	if file.JWTAlgorithm != "" {
		merged.JWTAlgorithm = file.JWTAlgorithm
	}
	if file.JWTSecret != "" {
		merged.JWTSecret = file.JWTSecret
	}
	if file.JWTPublicKeyPEM != "" {
		merged.JWTPublicKeyPEM = file.JWTPublicKeyPEM
	}

	return &merged
}

// GetEnvVar returns the value of an environment variable with a default.
func GetEnvVar(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the value of an environment variable as an int with a
// default.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
