package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

// AuthConfig selects how session tokens are verified. When PublicKeyPEM is
// set tokens must be RS256-signed by it; otherwise HS256 with Secret is used.
type AuthConfig struct {
	PublicKeyPEM string
	Secret       string
}

// AuthService verifies Clerk session tokens.
type AuthService struct {
	publicKey *rsa.PublicKey
	secret    []byte
	log       *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig, log *slog.Logger) (*AuthService, error) {
	s := &AuthService{log: log}
	switch {
	case strings.TrimSpace(cfg.PublicKeyPEM) != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse Clerk public key: %w", err)
		}
		s.publicKey = key
	case cfg.Secret != "":
		s.secret = []byte(cfg.Secret)
	default:
		return nil, errors.New("no token verification key configured")
	}
	return s, nil
}

// ValidateToken parses and validates a session token and returns its subject,
// the caller's Clerk id.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if s.publicKey != nil {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: invalid token: %w", ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, nil
}
