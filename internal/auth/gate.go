package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means no usable verified identity: a missing or malformed
	// header, or a token that failed verification (expired, bad signature, no email).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity was verified but is not on the allow-list.
	ErrForbidden = errors.New("forbidden")
)

// Identity is a verified caller.
type Identity struct {
	Subject string
	Email   string
}

// IdentityVerifier validates a bearer credential.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token from an Authorization header value of the form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// AllowList is a set of lower-cased emails. An empty list admits every verified identity.
type AllowList map[string]struct{}

// ParseAllowList parses a comma separated email list, trimming and lower-casing entries.
func ParseAllowList(s string) AllowList {
	out := AllowList{}
	for _, e := range strings.Split(s, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out[e] = struct{}{}
		}
	}
	return out
}

// Open reports whether the list admits any verified identity.
func (a AllowList) Open() bool { return len(a) == 0 }

// Allows reports whether email may pass.
func (a AllowList) Allows(email string) bool {
	if a.Open() {
		return true
	}
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Gate authorizes privileged operations. It holds no per-request state.
type Gate struct {
	verifier IdentityVerifier
	allow    AllowList
}

// NewGate builds a gate over verifier with the comma separated allow-list.
func NewGate(verifier IdentityVerifier, allowList string) *Gate {
	return &Gate{verifier: verifier, allow: ParseAllowList(allowList)}
}

// Open reports whether the gate runs with an empty allow-list.
func (g *Gate) Open() bool { return g.allow.Open() }

// Authorize decides from an Authorization header value whether the caller may proceed.
func (g *Gate) Authorize(ctx context.Context, header string) (*Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, fmt.Errorf("%w: missing or malformed bearer token", ErrUnauthenticated)
	}
	id, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if id == nil || strings.TrimSpace(id.Email) == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrUnauthenticated)
	}
	if !g.allow.Allows(id.Email) {
		return nil, fmt.Errorf("%w: %s is not an administrator", ErrForbidden, id.Email)
	}
	return id, nil
}
