package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"paperlib/internal/config"
)

// ErrNoVerificationKey is returned when no certificate URL, public key or shared secret is configured.
var ErrNoVerificationKey = errors.New("no jwt verification key configured")

// Claims are the ID token claims this service reads.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 or RS256 ID tokens. With a KeySet the RS256 key
// is chosen by the token's kid header, which follows key rotation.
type JWTVerifier struct {
	key    any
	keys   *KeySet
	parser *jwt.Parser
}

var _ IdentityVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier picks the certificate URL, then the RSA public key, then the secret.
func NewJWTVerifier(cfg config.AuthConfig) (*JWTVerifier, error) {
	var (
		key     any
		keys    *KeySet
		methods []string
	)
	switch {
	case cfg.JWTCertsURL != "":
		keys, methods = NewKeySet(cfg.JWTCertsURL, nil), []string{jwt.SigningMethodRS256.Alg()}
	case cfg.JWTPublicKey != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		key, methods = pub, []string{jwt.SigningMethodRS256.Alg()}
	case cfg.JWTSecret != "":
		key, methods = []byte(cfg.JWTSecret), []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, ErrNoVerificationKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTVerifier{key: key, keys: keys, parser: jwt.NewParser(opts...)}, nil
}

// Verify parses and validates token and returns the identity it asserts.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if v.keys == nil {
			return v.key, nil
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: token has no kid", ErrUnknownKeyID)
		}
		return v.keys.Key(ctx, kid)
	}); err != nil {
		return nil, err
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, errors.New("email not verified")
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}
