package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// gcsStorage implements Storage on Google Cloud Storage.
type gcsStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCS creates a Cloud Storage backed client for bucket.
// Signing uses the credentials carried by opts, or ambient credentials when none are given.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsStorage{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

func mapGCSErr(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return err
}

func (g *gcsStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = opt.ContentType
	w.ContentDisposition = opt.ContentDisposition
	w.Metadata = opt.Metadata
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return ObjectInfo{}, fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("finalize gcs object: %w", err)
	}
	return fromAttrs(w.Attrs()), nil
}

func (g *gcsStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	rd, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, mapGCSErr(err)
	}
	return rd, ObjectInfo{
		Key:          key,
		Size:         rd.Attrs.Size,
		ContentType:  rd.Attrs.ContentType,
		LastModified: rd.Attrs.LastModified,
	}, nil
}

func (g *gcsStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	attrs, err := g.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, mapGCSErr(err)
	}
	return fromAttrs(attrs), nil
}

func fromAttrs(a *gcs.ObjectAttrs) ObjectInfo {
	if a == nil {
		return ObjectInfo{}
	}
	return ObjectInfo{
		Key:          a.Name,
		Size:         a.Size,
		ETag:         a.Etag,
		ContentType:  a.ContentType,
		LastModified: a.Updated,
		Metadata:     a.Metadata,
	}
}

func (g *gcsStorage) Delete(ctx context.Context, key string) error {
	return mapGCSErr(g.bucket.Object(key).Delete(ctx))
}

func (g *gcsStorage) PresignGet(_ context.Context, key string, expiry time.Duration, o ResponseOverrides) (string, error) {
	return g.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:          gcs.SigningSchemeV4,
		Method:          http.MethodGet,
		Expires:         time.Now().Add(expiry),
		QueryParameters: o.Query(),
	})
}

func (g *gcsStorage) PresignPut(_ context.Context, key string, expiry time.Duration, contentType string) (string, error) {
	return g.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     time.Now().Add(expiry),
		ContentType: contentType,
	})
}

func (g *gcsStorage) PublicURL(key string) string {
	return gcsPublicHost + "/" + g.name + "/" + escapeKey(key)
}

// Close releases the underlying client.
func (g *gcsStorage) Close() error {
	return g.client.Close()
}
