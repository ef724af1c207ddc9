package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlib/internal/config"
)

func signHS(t *testing.T, secret string, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(email string) Claims {
	now := time.Now()
	return Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-1",
			Issuer:    "https://securetoken.example.com/papers",
			Audience:  jwt.ClaimStrings{"papers"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestNewJWTVerifier_NoKey(t *testing.T) {
	_, err := NewJWTVerifier(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrNoVerificationKey)
}

func TestJWTVerifier_HS256(t *testing.T) {
	v, err := NewJWTVerifier(config.AuthConfig{
		JWTSecret: "s3cret",
		Issuer:    "https://securetoken.example.com/papers",
		Audience:  "papers",
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		id, err := v.Verify(ctx, signHS(t, "s3cret", validClaims("a@example.com")))
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", id.Email)
		assert.Equal(t, "uid-1", id.Subject)
	})

	t.Run("expired", func(t *testing.T) {
		c := validClaims("a@example.com")
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(ctx, signHS(t, "s3cret", c))
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := validClaims("a@example.com")
		c.ExpiresAt = nil
		_, err := v.Verify(ctx, signHS(t, "s3cret", c))
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(ctx, signHS(t, "other", validClaims("a@example.com")))
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := validClaims("a@example.com")
		c.Audience = jwt.ClaimStrings{"someone-else"}
		_, err := v.Verify(ctx, signHS(t, "s3cret", c))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	})

	t.Run("unverified email", func(t *testing.T) {
		c := validClaims("a@example.com")
		no := false
		c.EmailVerified = &no
		_, err := v.Verify(ctx, signHS(t, "s3cret", c))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-jwt")
		assert.Error(t, err)
	})
}

func TestJWTVerifier_RS256(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewJWTVerifier(config.AuthConfig{JWTPublicKey: string(pemKey), JWTSecret: "ignored"})
	require.NoError(t, err)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("b@example.com")).SignedString(priv)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", id.Email)

	// An HS256 token must not be accepted when the verifier is pinned to RS256.
	_, err = v.Verify(context.Background(), signHS(t, "ignored", validClaims("b@example.com")))
	assert.Error(t, err)
}
