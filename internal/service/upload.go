package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paperlib/internal/meta"
	"paperlib/internal/model"
	"paperlib/internal/proxy"
	"paperlib/internal/repository"
	"paperlib/internal/storage"
)

const (
	// UploadPrefix is where uploads received through the API are stored.
	UploadPrefix       = "papers/"
	defaultContentType = "application/octet-stream"
)

// UploadInput is one file to store and register.
// Title and Authors fall back to what ParseFileName finds in FileName.
// Key is generated under UploadPrefix when empty; an explicit Key that is
// already registered yields ErrAlreadyExists before anything is written.
type UploadInput struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
	Title       string
	Authors     []string
	Keywords    []string
	Key         string
}

// RegisterInput describes an object already present in the store.
type RegisterInput struct {
	Key         string
	Size        int64
	ContentType string
	Title       string
	Authors     []string
	Keywords    []string
}

var (
	now        = time.Now
	randSuffix = func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:6] }
)

// uploadKey builds papers/<unixMillis>-<rand6>-<name>.
func uploadKey(t time.Time, name string) string {
	return fmt.Sprintf("%s%d-%s-%s", UploadPrefix, t.UnixMilli(), randSuffix(), name)
}

// baseName keeps only the last path segment of a client supplied file name.
func baseName(name string) string {
	b := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	b = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, b)
	if b == "" || b == "." || b == "/" || b == ".." {
		return "file"
	}
	return b
}

func (s *paperService) Upload(ctx context.Context, in UploadInput) (*model.Paper, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	name := baseName(in.FileName)

	// Keys are stored in normalized form so the proxy resolves them unchanged.
	var key string
	var err error
	if in.Key == "" {
		key, err = proxy.CleanKey(uploadKey(now(), baseName(proxy.NormalizeKey(name))))
	} else if key, err = proxy.CleanKey(in.Key); err == nil {
		err = s.ensureUnregistered(ctx, key)
	}
	if err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:               in.Size,
		ContentType:        contentType,
		ContentDisposition: proxy.ContentDisposition(proxy.Inline, name),
		Metadata: map[string]string{
			"original-filename": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	size := objInfo.Size
	if size <= 0 {
		size = in.Size
	}
	stored, err := s.repo.Create(ctx, s.newPaper(name, key, size, contentType, in.Title, in.Authors, in.Keywords))
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("id", stored.ID).Str("key", key).Int64("size", size).Msg("paper uploaded")
	return stored, nil
}

func (s *paperService) Register(ctx context.Context, in RegisterInput) (*model.Paper, error) {
	key, err := proxy.CleanKey(in.Key)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnregistered(ctx, key); err != nil {
		return nil, err
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	stored, err := s.repo.Create(ctx, s.newPaper(path.Base(key), key, in.Size, contentType, in.Title, in.Authors, in.Keywords))
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *paperService) ensureUnregistered(ctx context.Context, key string) error {
	_, err := s.repo.FindByFileName(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup %s: %w", key, err)
	}
}

func (s *paperService) newPaper(name, key string, size int64, contentType, title string, authors, keywords []string) *model.Paper {
	parsedTitle, parsedAuthors := meta.ParseFileName(name)
	if strings.TrimSpace(title) == "" {
		title = parsedTitle
	}
	if len(authors) == 0 {
		authors = parsedAuthors
	}
	if authors == nil {
		authors = []string{}
	}
	if keywords == nil {
		keywords = []string{}
	}
	return &model.Paper{
		Title:      strings.TrimSpace(title),
		Authors:    authors,
		Keywords:   keywords,
		FileName:   key,
		FileURL:    s.store.PublicURL(key),
		FileSize:   size,
		FileType:   contentType,
		UploadDate: now().UTC(),
	}
}
