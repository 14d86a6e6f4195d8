package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier is the external identity collaborator: it turns a raw bearer
// token into a verified Principal or an error. The hub core treats the
// implementation as opaque and never issues tokens itself.
type TokenVerifier interface {
	Verify(rawToken string) (*Principal, error)
}

// VerifierConfig holds configuration for JWT verification.
type VerifierConfig struct {
	// Algorithm is "RS256" or "HS256".
	Algorithm string

	// PublicKeyPEM configures RS256.
	PublicKeyPEM string

	// SecretKey configures HS256.
	SecretKey string
}

// JWTVerifier verifies bearer tokens with RS256 (PEM public key) or HS256
// (shared secret) and extracts the identity claims.
type JWTVerifier struct {
	config    VerifierConfig
	publicKey *rsa.PublicKey
}

// NewJWTVerifier creates a verifier for the configured algorithm.
func NewJWTVerifier(config VerifierConfig) (*JWTVerifier, error) {
	v := &JWTVerifier{config: config}

	switch config.Algorithm {
	case "RS256":
		if config.PublicKeyPEM == "" {
			return nil, fmt.Errorf("RS256 requires a public key")
		}
		key, err := parsePublicKeyPEM(config.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from PEM: %w", err)
		}
		v.publicKey = key
	case "HS256":
		if config.SecretKey == "" {
			return nil, fmt.Errorf("HS256 requires a secret key")
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", config.Algorithm)
	}

	return v, nil
}

// Verify parses and verifies a token, returning the Principal carried in its
// claims.
func (v *JWTVerifier) Verify(rawToken string) (*Principal, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	token, err := jwt.ParseWithClaims(rawToken, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.config.Algorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if v.config.Algorithm == "RS256" {
			return v.publicKey, nil
		}
		return []byte(v.config.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return principalFromClaims(claims)
}

// principalFromClaims extracts the identity fields this core consumes.
func principalFromClaims(claims *jwt.MapClaims) (*Principal, error) {
	email, ok := (*claims)["email"].(string)
	if !ok || email == "" {
		return nil, fmt.Errorf("missing or invalid 'email' claim")
	}

	sub, ok := (*claims)["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing or invalid 'sub' claim")
	}

	issuer, _ := (*claims)["iss"].(string)

	return &Principal{
		Email:  email,
		Sub:    sub,
		Issuer: issuer,
	}, nil
}

// parsePublicKeyPEM loads an RSA public key from PEM data.
func parsePublicKeyPEM(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}
