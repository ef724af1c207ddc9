package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// Package storage contains object store abstractions with S3-compatible and
// Cloud Storage implementations. Implementations avoid local disk and rely on
// streaming I/O only.

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size               int64
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// ResponseOverrides are response headers baked into a signed GET URL.
type ResponseOverrides struct {
	ContentDisposition string
	ContentType        string
}

// Query returns the overrides as S3/GCS signed URL query parameters.
func (o ResponseOverrides) Query() url.Values {
	v := url.Values{}
	if o.ContentDisposition != "" {
		v.Set("response-content-disposition", o.ContentDisposition)
	}
	if o.ContentType != "" {
		v.Set("response-content-type", o.ContentType)
	}
	return v
}

// Storage is the object store used for paper files.
// Methods use context and streaming readers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without reading content, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key. A missing object yields ErrObjectNotFound
	// where the backend reports it.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL with the given response overrides signed in.
	PresignGet(ctx context.Context, key string, expiry time.Duration, o ResponseOverrides) (string, error)
	// PresignPut returns a time-limited upload URL bound to contentType.
	PresignPut(ctx context.Context, key string, expiry time.Duration, contentType string) (string, error)
	// PublicURL returns the permanent, unsigned URL of key.
	PublicURL(key string) string
}

// escapeKey percent-encodes each path segment of key.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
