// Package gcpauth resolves Google Cloud credentials from the first configured source.
package gcpauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"paperlib/internal/config"
)

// ErrNoCredentials is returned when every strategy was tried and none applied.
var ErrNoCredentials = errors.New("no google cloud credentials found")

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Credentials is the outcome of Resolve.
type Credentials struct {
	// Source names the strategy that produced the credentials.
	Source    string
	ProjectID string
	Options   []option.ClientOption
}

// Strategy tries one credential source. It returns ok=false when its inputs are absent;
// a non-nil error means the inputs were present but unusable.
type Strategy struct {
	Name string
	Try  func(ctx context.Context, cfg config.FirebaseConfig) (c *Credentials, ok bool, err error)
}

// DefaultStrategies is the resolution order: JSON blob, split fields, credentials file, ambient ADC.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "service-account-json", Try: fromJSONBlob},
		{Name: "service-account-fields", Try: fromFields},
		{Name: "credentials-file", Try: fromFile},
		{Name: "application-default", Try: fromADC},
	}
}

// Resolve runs strategies in order and returns the first success. Failures of
// strategies whose inputs were present are collected into the final error.
func Resolve(ctx context.Context, cfg config.FirebaseConfig, strategies ...Strategy) (*Credentials, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	var errs []error
	for _, s := range strategies {
		c, ok, err := s.Try(ctx, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if !ok {
			continue
		}
		c.Source = s.Name
		if cfg.ProjectID != "" {
			c.ProjectID = cfg.ProjectID
		}
		return c, nil
	}
	return nil, errors.Join(append([]error{ErrNoCredentials}, errs...)...)
}

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri,omitempty"`
}

func parseServiceAccount(b []byte) (serviceAccount, error) {
	var sa serviceAccount
	if err := json.Unmarshal(b, &sa); err != nil {
		return sa, fmt.Errorf("parse service account: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return sa, errors.New("service account is missing client_email or private_key")
	}
	return sa, nil
}

func fromJSONBlob(_ context.Context, cfg config.FirebaseConfig) (*Credentials, bool, error) {
	blob := strings.TrimSpace(cfg.ServiceAccountKey)
	if blob == "" {
		return nil, false, nil
	}
	sa, err := parseServiceAccount([]byte(blob))
	if err != nil {
		return nil, true, err
	}
	return &Credentials{
		ProjectID: sa.ProjectID,
		Options:   []option.ClientOption{option.WithCredentialsJSON([]byte(blob))},
	}, true, nil
}

func fromFields(_ context.Context, cfg config.FirebaseConfig) (*Credentials, bool, error) {
	if cfg.ClientEmail == "" && cfg.PrivateKey == "" {
		return nil, false, nil
	}
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" || cfg.ProjectID == "" {
		return nil, true, errors.New("client email, private key and project id must all be set")
	}
	blob, err := json.Marshal(serviceAccount{
		Type:        "service_account",
		ProjectID:   cfg.ProjectID,
		ClientEmail: cfg.ClientEmail,
		PrivateKey:  cfg.PrivateKey,
		TokenURI:    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, true, err
	}
	return &Credentials{
		ProjectID: cfg.ProjectID,
		Options:   []option.ClientOption{option.WithCredentialsJSON(blob)},
	}, true, nil
}

func fromFile(_ context.Context, cfg config.FirebaseConfig) (*Credentials, bool, error) {
	if cfg.CredentialsFile == "" {
		return nil, false, nil
	}
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, true, err
	}
	sa, err := parseServiceAccount(b)
	if err != nil {
		return nil, true, err
	}
	return &Credentials{
		ProjectID: sa.ProjectID,
		Options:   []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)},
	}, true, nil
}

func fromADC(ctx context.Context, _ config.FirebaseConfig) (*Credentials, bool, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		// absent rather than broken; Resolve reports exhaustion
		return nil, false, nil
	}
	return &Credentials{
		ProjectID: creds.ProjectID,
		Options:   []option.ClientOption{option.WithCredentials(creds)},
	}, true, nil
}
