package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/rs/zerolog"

	"paperlib/internal/service"
)

// FinalizedType is the CloudEvent type Cloud Storage emits when an object is written.
const FinalizedType = "google.cloud.storage.object.v1.finalized"

// ObjectEvent is the subset of the Cloud Storage object payload used here.
// Cloud Storage encodes size as a decimal string.
type ObjectEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	Size        string `json:"size"`
	ContentType string `json:"contentType"`
}

// SizeBytes parses Size, returning 0 when it is absent or malformed.
func (o ObjectEvent) SizeBytes() int64 {
	n, err := strconv.ParseInt(o.Size, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// HandleEvent registers the object named by a finalize event.
//
// Objects under service.UploadPrefix are registered by the upload endpoint
// itself and are ignored, as are non-PDF objects and other event types.
// Redelivery of an already registered object is not an error.
func (in *Ingester) HandleEvent(ctx context.Context, e cloudevents.Event) error {
	log := zerolog.Ctx(ctx).With().Str("event_id", e.ID()).Str("event_type", e.Type()).Logger()
	if e.Type() != "" && e.Type() != FinalizedType {
		log.Debug().Msg("event ignored")
		return nil
	}

	var obj ObjectEvent
	if err := e.DataAs(&obj); err != nil {
		return fmt.Errorf("decode object event: %w", err)
	}
	log = log.With().Str("bucket", obj.Bucket).Str("key", obj.Name).Logger()
	ctx = log.WithContext(ctx)

	switch {
	case obj.Name == "":
		return errors.New("object event without name")
	case strings.HasPrefix(obj.Name, service.UploadPrefix):
		log.Debug().Msg("api upload, ignored")
		return nil
	case !IsPDF(obj.Name):
		log.Debug().Msg("not a pdf, ignored")
		return nil
	}

	p, err := in.svc.Register(ctx, service.RegisterInput{
		Key:         obj.Name,
		Size:        obj.SizeBytes(),
		ContentType: obj.ContentType,
		Keywords:    in.keywordsOf(ctx, obj.Name),
	})
	if errors.Is(err, service.ErrAlreadyExists) {
		log.Info().Msg("already registered, skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("register %s: %w", obj.Name, err)
	}
	log.Info().Str("id", p.ID).Msg("paper registered from bucket event")
	return nil
}
