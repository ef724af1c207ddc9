package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnknownKeyID is returned when a token names a kid the certificate endpoint does not publish.
var ErrUnknownKeyID = errors.New("unknown signing key id")

const (
	defaultKeyTTL = time.Hour
	maxCertsBody  = 1 << 20

	// minRefetch bounds how often an unknown kid can force a fetch.
	minRefetch = time.Minute
)

var maxAgeRe = regexp.MustCompile(`max-age=(\d+)`)

// KeySet resolves RS256 verification keys by kid from an endpoint publishing a
// JSON object of kid to PEM certificate or public key, the format Google uses
// for Firebase ID tokens. Keys are cached for the response's max-age.
type KeySet struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expires   time.Time
	fetchedAt time.Time
}

// NewKeySet returns a KeySet over url. A nil client uses a traced default client.
func NewKeySet(url string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &KeySet{url: url, client: client, now: time.Now}
}

// Key returns the public key for kid, fetching the set when the cache is stale
// or does not know kid.
func (s *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := s.now().Before(s.expires)
	recent := s.now().Sub(s.fetchedAt) < minRefetch
	s.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if fresh && recent {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
	}
	if err := s.refresh(ctx); err != nil {
		if ok {
			// Stale keys stay usable while the endpoint is unreachable.
			return key, nil
		}
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok = s.keys[kid]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
	}
	return key, nil
}

func (s *KeySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certs: status %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCertsBody)).Decode(&raw); err != nil {
		return fmt.Errorf("decode signing certs: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pemData := range raw {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
		if err != nil {
			return fmt.Errorf("parse signing cert %q: %w", kid, err)
		}
		keys[kid] = pub
	}

	ttl := defaultKeyTTL
	if m := maxAgeRe.FindStringSubmatch(resp.Header.Get("Cache-Control")); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			ttl = time.Duration(secs) * time.Second
		}
	}

	now := s.now()
	s.mu.Lock()
	s.keys, s.expires, s.fetchedAt = keys, now.Add(ttl), now
	s.mu.Unlock()
	return nil
}
