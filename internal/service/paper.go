package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"paperlib/internal/model"
	"paperlib/internal/repository"
	"paperlib/internal/storage"
	"paperlib/internal/summary"
)

const (
	DefaultPageSize   = 10
	DefaultSearchSize = 20
	DefaultMaxPage    = 50
	LeaderboardSize   = 5
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("paper not found")
	ErrReaderNil         = errors.New("reader is nil")
	ErrFileNameRequired  = errors.New("fileName is required")
	ErrInvalidOrder      = errors.New("invalid ordering")
	ErrAlreadyExists     = errors.New("paper already registered")
	ErrSummariesDisabled = errors.New("summaries are not configured")
)

// ListParams are the raw listing inputs; the service applies defaults and caps.
type ListParams struct {
	SearchTerm   string
	OrderBy      string
	Order        string
	Limit        int
	StartAfterID string
}

// ListResult is one page of papers. Cursor is nil only on an empty page.
type ListResult struct {
	Items  []model.Paper
	Cursor *string
}

// Leaderboards groups the three fixed-size rankings.
type Leaderboards struct {
	Recent          []model.Paper
	PopularPreview  []model.Paper
	PopularDownload []model.Paper
}

// PaperService defines the use cases of the paper library.
type PaperService interface {
	// List pages through papers, or prefix-searches titles when SearchTerm is set.
	List(ctx context.Context, p ListParams) (*ListResult, error)

	// Leaderboards runs the recent, most-previewed and most-downloaded queries concurrently.
	Leaderboards(ctx context.Context) (*Leaderboards, error)

	// Get returns a single paper by its ID.
	Get(ctx context.Context, id string) (*model.Paper, error)

	// Summary returns the stored summary, falling back to the abstract.
	Summary(ctx context.Context, id string) (string, error)

	// Summarize generates a summary for the stored object fileName and, when id is set, persists it.
	Summarize(ctx context.Context, fileName, id string) (string, error)

	// Upload streams the content to object storage and registers the paper, rolling back storage if that fails.
	Upload(ctx context.Context, in UploadInput) (*model.Paper, error)

	// Register records a paper for an object that is already in the store.
	Register(ctx context.Context, in RegisterInput) (*model.Paper, error)

	// Delete removes the record and, when fileName is given, the object. Partial failures are logged, not returned.
	Delete(ctx context.Context, id, fileName string) error
}

type paperService struct {
	store      storage.Storage
	repo       repository.PaperRepository
	summarizer summary.Summarizer
	maxPage    int
}

// NewPaperService constructs a PaperService. summarizer may be nil, in which case
// Summarize reports ErrSummariesDisabled. maxPage <= 0 means DefaultMaxPage.
func NewPaperService(store storage.Storage, repo repository.PaperRepository, summarizer summary.Summarizer, maxPage int) PaperService {
	if maxPage <= 0 {
		maxPage = DefaultMaxPage
	}
	return &paperService{store: store, repo: repo, summarizer: summarizer, maxPage: maxPage}
}

func (s *paperService) pageSize(limit int, search bool) int {
	if limit <= 0 {
		if search {
			limit = DefaultSearchSize
		} else {
			limit = DefaultPageSize
		}
	}
	if limit > s.maxPage {
		limit = s.maxPage
	}
	return limit
}

func (s *paperService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	q := repository.ListQuery{TitlePrefix: strings.TrimSpace(p.SearchTerm)}
	search := q.TitlePrefix != ""
	q.Limit = s.pageSize(p.Limit, search)

	if !search {
		var ok bool
		if p.OrderBy != "" {
			if q.OrderBy, ok = repository.ParseOrderField(p.OrderBy); !ok {
				return nil, fmt.Errorf("%w: orderByField %q", ErrInvalidOrder, p.OrderBy)
			}
		}
		if p.Order != "" {
			if q.Direction, ok = repository.ParseDirection(p.Order); !ok {
				return nil, fmt.Errorf("%w: order %q", ErrInvalidOrder, p.Order)
			}
		}
	}

	if p.StartAfterID != "" {
		cursor, err := s.repo.FindByID(ctx, p.StartAfterID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// the cursor document is gone; start over from the first page
			zerolog.Ctx(ctx).Debug().Str("start_after_id", p.StartAfterID).Msg("cursor no longer resolves, restarting")
		case err != nil:
			return nil, fmt.Errorf("resolve cursor: %w", err)
		default:
			q.StartAfter = cursor
		}
	}

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Paper{}
	}
	res := &ListResult{Items: items}
	if n := len(items); n > 0 {
		id := items[n-1].ID
		res.Cursor = &id
	}
	return res, nil
}

func (s *paperService) Leaderboards(ctx context.Context) (*Leaderboards, error) {
	var out Leaderboards
	g, gctx := errgroup.WithContext(ctx)
	board := func(field repository.OrderField, dst *[]model.Paper) {
		g.Go(func() error {
			items, err := s.repo.List(gctx, repository.ListQuery{
				OrderBy:   field,
				Direction: repository.Desc,
				Limit:     LeaderboardSize,
			})
			if err != nil {
				return fmt.Errorf("leaderboard %s: %w", field, err)
			}
			if items == nil {
				items = []model.Paper{}
			}
			*dst = items
			return nil
		})
	}
	board(repository.OrderByUploadDate, &out.Recent)
	board(repository.OrderByPreviewCount, &out.PopularPreview)
	board(repository.OrderByDownloadCount, &out.PopularDownload)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a paper by ID.
func (s *paperService) Get(ctx context.Context, id string) (*model.Paper, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *paperService) Summary(ctx context.Context, id string) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.SummaryOrAbstract(), nil
}
