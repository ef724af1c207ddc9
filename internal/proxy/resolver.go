package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paperlib/internal/storage"
)

var (
	// ErrNotFound is returned when the object does not exist in the store.
	ErrNotFound = errors.New("object not found")
	// ErrProxyFailed wraps any other store or upstream failure.
	ErrProxyFailed = errors.New("proxy failed")
)

// Mode selects how Resolve hands the object to the caller.
type Mode string

const (
	// ModeStream fetches the signed URL server-side and pipes the bytes back.
	ModeStream Mode = "stream"
	// ModeRedirect answers with a redirect to the signed URL.
	ModeRedirect Mode = "redirect"
)

// ParseMode accepts "stream" or "redirect"; empty means stream.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStream:
		return ModeStream, nil
	case ModeRedirect:
		return ModeRedirect, nil
	}
	return "", fmt.Errorf("unknown proxy mode %q", s)
}

// forwardedHeaders are copied verbatim from the upstream response.
var forwardedHeaders = []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges", "ETag", "Last-Modified"}

// Result is what the HTTP layer writes back. Exactly one of Body or Location is set.
type Result struct {
	Status   int
	Header   http.Header
	Body     io.ReadCloser
	Location string
}

// Resolver turns an object key into a redirect or a proxied byte stream.
// It never mutates the store.
type Resolver struct {
	signer *Signer
	store  storage.Storage
	mode   Mode
	client *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the upstream client used in stream mode.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// NewUpstreamClient returns a traced client without an overall timeout, so long
// downloads are not cut off; only the wait for response headers is bounded.
func NewUpstreamClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ResponseHeaderTimeout = 30 * time.Second
	return &http.Client{Transport: otelhttp.NewTransport(t)}
}

// NewResolver builds a resolver in the given mode.
func NewResolver(signer *Signer, store storage.Storage, mode Mode, opts ...Option) *Resolver {
	r := &Resolver{signer: signer, store: store, mode: mode}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		r.client = NewUpstreamClient()
	}
	return r
}

// Mode returns the configured strategy.
func (r *Resolver) Mode() Mode { return r.mode }

// Resolve serves rawKey with the requested disposition. rangeHeader is forwarded
// upstream in stream mode; partial responses keep their 206 status and Content-Range.
func (r *Resolver) Resolve(ctx context.Context, rawKey, disposition, rangeHeader string) (*Result, error) {
	key, err := CleanKey(rawKey)
	if err != nil {
		return nil, err
	}
	if r.mode == ModeRedirect {
		return r.redirect(ctx, key, disposition)
	}
	return r.stream(ctx, key, disposition, rangeHeader)
}

func (r *Resolver) redirect(ctx context.Context, key, disposition string) (*Result, error) {
	if _, err := r.store.Stat(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrProxyFailed, key, err)
	}
	signed, err := r.signer.SignGet(ctx, key, disposition)
	if err != nil {
		return nil, fmt.Errorf("%w: sign %s: %v", ErrProxyFailed, key, err)
	}
	h := http.Header{}
	h.Set("Cache-Control", "no-store")
	return &Result{Status: http.StatusFound, Header: h, Location: signed.URL}, nil
}

func (r *Resolver) stream(ctx context.Context, key, disposition, rangeHeader string) (*Result, error) {
	signed, err := r.signer.SignGet(ctx, key, disposition)
	if err != nil {
		return nil, fmt.Errorf("%w: sign %s: %v", ErrProxyFailed, key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrProxyFailed, err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upstream request: %v", ErrProxyFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// forwarded as is so the client sees the object size in Content-Range
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		drain(resp.Body)
		return nil, fmt.Errorf("%w: upstream status %d: %s", ErrProxyFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	h := http.Header{}
	for _, name := range forwardedHeaders {
		if v := resp.Header.Get(name); v != "" {
			h.Set(name, v)
		}
	}
	h.Set("Content-Disposition", signed.ResponseOverrides.ContentDisposition)

	return &Result{
		Status: resp.StatusCode,
		Header: h,
		Body:   &loggedBody{rc: resp.Body, log: zerolog.Ctx(ctx), key: key},
	}, nil
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4<<10))
	_ = rc.Close()
}

// loggedBody logs, once, a read failure on the upstream body. The failure still
// ends the response, but it never propagates beyond the stream.
type loggedBody struct {
	rc     io.ReadCloser
	log    *zerolog.Logger
	key    string
	n      int64
	logged bool
}

func (b *loggedBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	b.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && !b.logged {
		b.logged = true
		b.log.Warn().Err(err).Str("key", b.key).Int64("bytes", b.n).Msg("proxy stream interrupted")
	}
	return n, err
}

func (b *loggedBody) Close() error {
	return b.rc.Close()
}
