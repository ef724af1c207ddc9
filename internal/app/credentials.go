package app

import (
	"context"
	"sync"

	"paperlib/internal/config"
	"paperlib/internal/gcpauth"
)

// credentialCache resolves Google credentials once and shares them between
// Firestore, Cloud Storage and Vertex AI.
type credentialCache struct {
	cfg        config.FirebaseConfig
	strategies []gcpauth.Strategy

	once  sync.Once
	creds *gcpauth.Credentials
	err   error
}

func newCredentialCache(cfg config.FirebaseConfig, strategies ...gcpauth.Strategy) *credentialCache {
	return &credentialCache{cfg: cfg, strategies: strategies}
}

func (c *credentialCache) get(ctx context.Context) (*gcpauth.Credentials, error) {
	c.once.Do(func() {
		c.creds, c.err = gcpauth.Resolve(ctx, c.cfg, c.strategies...)
	})
	return c.creds, c.err
}
