package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"paperlib/internal/proxy"
	"paperlib/internal/repository"
	"paperlib/internal/storage"
)

// Delete removes the record, then the object when fileName is given.
// Neither failure is returned: a half-deleted paper is logged and the call still succeeds.
func (s *paperService) Delete(ctx context.Context, id, fileName string) error {
	if id == "" {
		return ErrIDRequired
	}
	log := zerolog.Ctx(ctx).With().Str("id", id).Logger()

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Warn().Err(err).Msg("delete paper record failed")
	}

	if fileName == "" {
		return nil
	}
	key, err := proxy.CleanKey(fileName)
	if err != nil {
		log.Warn().Err(err).Str("file_name", fileName).Msg("skipping object delete")
		return nil
	}
	switch err := s.store.Delete(ctx, key); {
	case err == nil:
		log.Info().Str("key", key).Msg("paper deleted")
	case errors.Is(err, storage.ErrObjectNotFound):
		log.Debug().Str("key", key).Msg("object already gone")
	default:
		log.Warn().Err(err).Str("key", key).Msg("delete object failed")
	}
	return nil
}
