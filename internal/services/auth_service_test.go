package services_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"sprift/internal/logger"
	"sprift/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret string, claims jwt.StandardClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthService_HS256(t *testing.T) {
	svc, err := services.NewAuthService(services.AuthConfig{Secret: "test_jwt_secret"}, logger.Discard())
	require.NoError(t, err)

	valid := signHS256(t, "test_jwt_secret", jwt.StandardClaims{Subject: "user_1", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	sub, err := svc.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "user_1", sub)

	cases := map[string]string{
		"expired":      signHS256(t, "test_jwt_secret", jwt.StandardClaims{Subject: "user_1", ExpiresAt: time.Now().Add(-time.Hour).Unix()}),
		"wrong secret": signHS256(t, "other", jwt.StandardClaims{Subject: "user_1"}),
		"no subject":   signHS256(t, "test_jwt_secret", jwt.StandardClaims{}),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, services.ErrUnauthenticated)
		})
	}
}

func TestAuthService_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	svc, err := services.NewAuthService(services.AuthConfig{PublicKeyPEM: pemKey, Secret: "ignored"}, logger.Discard())
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.StandardClaims{Subject: "user_rsa"}).SignedString(key)
	require.NoError(t, err)
	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", sub)

	_, err = svc.ValidateToken(signHS256(t, "ignored", jwt.StandardClaims{Subject: "user_rsa"}))
	assert.ErrorIs(t, err, services.ErrUnauthenticated, "HMAC tokens are rejected when a public key is configured")
}

func TestNewAuthService_RequiresKey(t *testing.T) {
	_, err := services.NewAuthService(services.AuthConfig{}, logger.Discard())
	assert.Error(t, err)

	_, err = services.NewAuthService(services.AuthConfig{PublicKeyPEM: "not pem"}, logger.Discard())
	assert.Error(t, err)
}
