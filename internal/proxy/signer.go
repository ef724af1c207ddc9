package proxy

import (
	"context"
	"net/http"
	"time"

	"paperlib/internal/storage"
)

// Signed URL validity bounds.
const (
	MinExpiry     = 300 * time.Second
	MaxExpiry     = 600 * time.Second
	DefaultExpiry = MinExpiry
)

// ClampExpiry bounds d to [MinExpiry, MaxExpiry]; zero or negative means DefaultExpiry.
func ClampExpiry(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultExpiry
	case d < MinExpiry:
		return MinExpiry
	case d > MaxExpiry:
		return MaxExpiry
	}
	return d
}

// SignedURL describes one signed request. It is built per request and never cached.
type SignedURL struct {
	URL               string                    `json:"url"`
	Key               string                    `json:"key"`
	Method            string                    `json:"method"`
	ExpiresAt         time.Time                 `json:"expiresAt"`
	ResponseOverrides storage.ResponseOverrides `json:"-"`
}

// Signer issues time-limited URLs for objects.
type Signer struct {
	store  storage.Storage
	expiry time.Duration
	now    func() time.Time
}

// NewSigner returns a signer whose URLs live for expiry, clamped to the allowed bounds.
func NewSigner(store storage.Storage, expiry time.Duration) *Signer {
	return &Signer{store: store, expiry: ClampExpiry(expiry), now: time.Now}
}

// Expiry returns the effective URL lifetime.
func (s *Signer) Expiry() time.Duration { return s.expiry }

// SignGet signs a download of key with the disposition baked into the signature.
func (s *Signer) SignGet(ctx context.Context, key, disposition string) (*SignedURL, error) {
	o := storage.ResponseOverrides{ContentDisposition: ContentDisposition(disposition, key)}
	issued := s.now()
	u, err := s.store.PresignGet(ctx, key, s.expiry, o)
	if err != nil {
		return nil, err
	}
	return &SignedURL{URL: u, Key: key, Method: http.MethodGet, ExpiresAt: issued.Add(s.expiry), ResponseOverrides: o}, nil
}

// SignPut signs an upload of key bound to contentType.
func (s *Signer) SignPut(ctx context.Context, key, contentType string) (*SignedURL, error) {
	issued := s.now()
	u, err := s.store.PresignPut(ctx, key, s.expiry, contentType)
	if err != nil {
		return nil, err
	}
	return &SignedURL{URL: u, Key: key, Method: http.MethodPut, ExpiresAt: issued.Add(s.expiry)}, nil
}

// PublicURL is the unsigned address of key, as returned to uploaders.
func (s *Signer) PublicURL(key string) string { return s.store.PublicURL(key) }
