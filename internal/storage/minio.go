package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"paperlib/internal/config"
)

// minioStorage implements Storage against an S3-compatible backend (Aliyun OSS, AWS S3, MinIO).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client      *minio.Client
	bucket      string
	baseURL     string
	virtualHost bool
}

// NewMinIO creates a new S3-compatible storage client.
// It validates connectivity and, when configured to, creates a missing bucket.
func NewMinIO(ctx context.Context, cfg config.OSSConfig) (Storage, error) {
	cli, err := newMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	ms := &minioStorage{client: cli, bucket: cfg.Bucket, baseURL: cfg.PublicBaseURL, virtualHost: cfg.VirtualHost}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
		}
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return ms, nil
}

func newMinIOClient(cfg config.OSSConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("oss endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("oss credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("oss bucket is required")
	}

	lookup := minio.BucketLookupPath
	if cfg.VirtualHost {
		lookup = minio.BucketLookupDNS
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return cli, nil
}

// mapMinIOErr converts S3 "missing" codes into ErrObjectNotFound.
func mapMinIOErr(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return err
}

// Put uploads an object using streaming I/O only (no local disk).
func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:        opt.ContentType,
		ContentDisposition: opt.ContentDisposition,
		UserMetadata:       opt.Metadata,
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // PutObject does not report LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Get downloads an object content as a ReadCloser along with basic info.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinIOErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before any content is read.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, mapMinIOErr(err)
	}
	return obj, toObjectInfo(key, st), nil
}

// Stat returns object info without reading content.
func (m *minioStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapMinIOErr(err)
	}
	return toObjectInfo(key, st), nil
}

func toObjectInfo(key string, st minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
}

// Delete removes an object by key. S3 reports success for missing keys.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	return mapMinIOErr(m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}))
}

// PresignGet generates a pre-signed GET URL with response overrides in the signature.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration, o ResponseOverrides) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, o.Query())
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PresignPut generates a pre-signed PUT URL. The Content-Type header is part of the signature.
func (m *minioStorage) PresignPut(ctx context.Context, key string, expiry time.Duration, contentType string) (string, error) {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	u, err := m.client.PresignHeader(ctx, http.MethodPut, m.bucket, key, expiry, nil, h)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PublicURL returns the unsigned object URL, preferring the configured public base.
func (m *minioStorage) PublicURL(key string) string {
	if m.baseURL != "" {
		return m.baseURL + "/" + escapeKey(key)
	}
	ep := m.client.EndpointURL()
	if m.virtualHost {
		return fmt.Sprintf("%s://%s.%s/%s", ep.Scheme, m.bucket, ep.Host, escapeKey(key))
	}
	return fmt.Sprintf("%s://%s/%s/%s", ep.Scheme, ep.Host, m.bucket, escapeKey(key))
}
