package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"paperlib/internal/proxy"
	"paperlib/internal/repository"
	"paperlib/internal/storage"
	"paperlib/internal/summary"
)

func (s *paperService) Summarize(ctx context.Context, fileName, id string) (string, error) {
	if s.summarizer == nil {
		return "", ErrSummariesDisabled
	}
	if fileName == "" {
		return "", ErrFileNameRequired
	}
	key, err := proxy.CleanKey(fileName)
	if err != nil {
		return "", err
	}

	data, err := s.readPDF(ctx, key)
	if err != nil {
		return "", err
	}
	if _, err := summary.InspectBytes(data); err != nil {
		return "", err
	}

	text, err := s.summarizer.Summarize(ctx, data)
	if err != nil {
		return "", err
	}

	if id != "" {
		// the summary is still returned when the record cannot be updated
		if err := s.repo.UpdateSummary(ctx, id, text); err != nil {
			ev := zerolog.Ctx(ctx).Warn()
			if errors.Is(err, repository.ErrNotFound) {
				ev = zerolog.Ctx(ctx).Info()
			}
			ev.Err(err).Str("id", id).Msg("summary not persisted")
		}
	}
	return text, nil
}

func (s *paperService) readPDF(ctx context.Context, key string) ([]byte, error) {
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	defer rc.Close()

	if info.Size > summary.MaxPDFBytes {
		return nil, summary.ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(rc, summary.MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) > summary.MaxPDFBytes {
		return nil, summary.ErrTooLarge
	}
	return data, nil
}
