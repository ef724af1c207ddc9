// Package ingest registers papers in bulk: from a local folder of PDFs or from
// object-finalize events emitted by the bucket.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"paperlib/internal/meta"
	"paperlib/internal/service"
	"paperlib/internal/storage"
	"paperlib/internal/summary"
)

// DefaultConcurrency bounds how many files are uploaded at once.
const DefaultConcurrency = 4

const pdfContentType = "application/pdf"

// inspectLimit bounds the files whose PDF metadata is read before upload.
var inspectLimit int64 = summary.MaxPDFBytes

// Result counts the outcome of a batch. Failures lists the files that failed, sorted.
type Result struct {
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []string
}

// Total is the number of files considered.
func (r Result) Total() int { return r.Succeeded + r.Skipped + r.Failed }

// Ingester feeds PDFs into the paper service.
type Ingester struct {
	svc         service.PaperService
	store       storage.Storage
	concurrency int
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithConcurrency overrides DefaultConcurrency. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.concurrency = n
		}
	}
}

// WithStore lets event handling read the finalized object for its PDF metadata.
func WithStore(s storage.Storage) Option {
	return func(in *Ingester) { in.store = s }
}

// New returns an Ingester over svc.
func New(svc service.PaperService, opts ...Option) *Ingester {
	in := &Ingester{svc: svc, concurrency: DefaultConcurrency}
	for _, o := range opts {
		o(in)
	}
	return in
}

// IsPDF reports whether name carries a .pdf extension, in any case.
func IsPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// ListPDFs returns the PDF files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPDF(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// IngestDir uploads every PDF in dir. Per-file failures are counted, not returned;
// the error is non-nil only when dir cannot be read or ctx is cancelled.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (Result, error) {
	files, err := ListPDFs(dir)
	if err != nil {
		return Result{}, err
	}
	log := zerolog.Ctx(ctx)
	log.Info().Str("dir", dir).Int("files", len(files)).Msg("batch ingest started")

	var (
		mu  sync.Mutex
		res Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			skipped, err := in.IngestFile(gctx, f)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
				res.Failures = append(res.Failures, filepath.Base(f))
				log.Error().Err(err).Str("file", f).Msg("ingest failed")
			case skipped:
				res.Skipped++
				log.Info().Str("file", f).Msg("already registered, skipped")
			default:
				res.Succeeded++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	sort.Strings(res.Failures)

	log.Info().
		Int("succeeded", res.Succeeded).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("batch ingest finished")
	return res, nil
}

// IngestFile uploads one local PDF under its bare file name. skipped is true when
// a paper with that file name is already registered.
func (in *Ingester) IngestFile(ctx context.Context, file string) (skipped bool, err error) {
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	// Files past inspectLimit are uploaded without their info dictionary.
	var keywords []string
	if st.Size() <= inspectLimit {
		info, err := summary.Inspect(f)
		if err != nil {
			return false, err
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return false, err
		}
		keywords = meta.SplitKeywords(info.Keywords)
	} else {
		zerolog.Ctx(ctx).Debug().Str("file", file).Int64("size", st.Size()).Msg("pdf metadata skipped")
	}

	name := filepath.Base(file)
	_, err = in.svc.Upload(ctx, service.UploadInput{
		Reader:      f,
		FileName:    name,
		ContentType: pdfContentType,
		Size:        st.Size(),
		Keywords:    keywords,
		Key:         name,
	})
	if errors.Is(err, service.ErrAlreadyExists) {
		return true, nil
	}
	return false, err
}

// keywordsOf reads key from the store and returns the keywords of its info dictionary.
// Objects that cannot be read or parsed yield no keywords.
func (in *Ingester) keywordsOf(ctx context.Context, key string) []string {
	if in.store == nil {
		return nil
	}
	rc, _, err := in.store.Get(ctx, key)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("metadata read skipped")
		return nil
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, summary.MaxPDFBytes))
	if err != nil {
		return nil
	}
	info, err := summary.Inspect(bytes.NewReader(b))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("pdf metadata unavailable")
		return nil
	}
	return meta.SplitKeywords(info.Keywords)
}
