package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperlib/internal/model"
	"paperlib/internal/repository"
	repoMocks "paperlib/internal/repository/mocks"
)

func TestPaperService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		params     ListParams
		setupMocks func(mRepo *repoMocks.MockPaperRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *ListResult)
	}{
		{
			name:   "defaults",
			params: ListParams{},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("List", ctx, repository.ListQuery{Limit: DefaultPageSize}).
					Return([]model.Paper{{ID: "a"}, {ID: "b"}}, nil)
			},
			checkRes: func(t *testing.T, res *ListResult) {
				assert.Len(t, res.Items, 2)
				require.NotNil(t, res.Cursor)
				assert.Equal(t, "b", *res.Cursor)
			},
		},
		{
			name:   "explicit order and capped limit",
			params: ListParams{OrderBy: "downloadCount", Order: "ASC", Limit: 500},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("List", ctx, repository.ListQuery{
					OrderBy:   repository.OrderByDownloadCount,
					Direction: repository.Asc,
					Limit:     DefaultMaxPage,
				}).Return([]model.Paper{}, nil)
			},
			checkRes: func(t *testing.T, res *ListResult) {
				assert.Empty(t, res.Items)
				assert.Nil(t, res.Cursor)
			},
		},
		{
			name:   "search ignores ordering and uses search default size",
			params: ListParams{SearchTerm: "  Deep ", OrderBy: "bogus", Order: "sideways"},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("List", ctx, repository.ListQuery{TitlePrefix: "Deep", Limit: DefaultSearchSize}).
					Return(nil, nil)
			},
			checkRes: func(t *testing.T, res *ListResult) {
				assert.NotNil(t, res.Items)
				assert.Nil(t, res.Cursor)
			},
		},
		{
			name:       "invalid order field",
			params:     ListParams{OrderBy: "rating"},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {},
			wantErr:    ErrInvalidOrder,
		},
		{
			name:       "invalid direction",
			params:     ListParams{Order: "up"},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {},
			wantErr:    ErrInvalidOrder,
		},
		{
			name:   "cursor resolved",
			params: ListParams{StartAfterID: "c1", Limit: 2},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				cursor := &model.Paper{ID: "c1"}
				mRepo.On("FindByID", ctx, "c1").Return(cursor, nil)
				mRepo.On("List", ctx, repository.ListQuery{Limit: 2, StartAfter: cursor}).
					Return([]model.Paper{{ID: "c2"}}, nil)
			},
			checkRes: func(t *testing.T, res *ListResult) {
				require.NotNil(t, res.Cursor)
				assert.Equal(t, "c2", *res.Cursor)
			},
		},
		{
			name:   "deleted cursor restarts from first page",
			params: ListParams{StartAfterID: "gone", Limit: 2},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "gone").Return(nil, repository.ErrNotFound)
				mRepo.On("List", ctx, repository.ListQuery{Limit: 2}).
					Return([]model.Paper{{ID: "first"}}, nil)
			},
			checkRes: func(t *testing.T, res *ListResult) {
				assert.Equal(t, "first", res.Items[0].ID)
			},
		},
		{
			name:   "cursor lookup failure",
			params: ListParams{StartAfterID: "x"},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "x").Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
		{
			name:   "repository error",
			params: ListParams{},
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockPaperRepository)
			svc := NewPaperService(nil, mRepo, nil, 0)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.params)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrInvalidOrder) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.ErrorContains(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

// memRepo is a keyset-paginating in-memory repository.
type memRepo struct {
	repoMocks.MockPaperRepository
	papers []model.Paper
}

func (m *memRepo) FindByID(_ context.Context, id string) (*model.Paper, error) {
	for i := range m.papers {
		if m.papers[i].ID == id {
			p := m.papers[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) List(_ context.Context, q repository.ListQuery) ([]model.Paper, error) {
	sorted := append([]model.Paper(nil), m.papers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UploadDate.Equal(sorted[j].UploadDate) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].UploadDate.After(sorted[j].UploadDate)
	})
	start := 0
	if q.StartAfter != nil {
		for i, p := range sorted {
			if p.ID == q.StartAfter.ID {
				start = i + 1
			}
		}
	}
	end := start + q.Limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], nil
}

func TestPaperService_ListCursorChain(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	for i := 0; i < 5; i++ {
		repo.papers = append(repo.papers, model.Paper{ID: fmt.Sprintf("p%d", i), UploadDate: base.Add(time.Duration(i) * time.Hour)})
	}
	svc := NewPaperService(nil, repo, nil, 0)

	var sizes []int
	var seen []string
	params := ListParams{Limit: 2}
	for i := 0; i < 10; i++ {
		res, err := svc.List(ctx, params)
		require.NoError(t, err)
		sizes = append(sizes, len(res.Items))
		for _, p := range res.Items {
			seen = append(seen, p.ID)
		}
		if res.Cursor == nil {
			break
		}
		params.StartAfterID = *res.Cursor
	}

	assert.Equal(t, []int{2, 2, 1, 0}, sizes)
	assert.Equal(t, []string{"p4", "p3", "p2", "p1", "p0"}, seen)
}

type boardRepo struct {
	repoMocks.MockPaperRepository
	mu      sync.Mutex
	queries []repository.ListQuery
	failOn  repository.OrderField
}

func (b *boardRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Paper, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	if q.OrderBy == b.failOn {
		return nil, errors.New("index missing")
	}
	return []model.Paper{{ID: string(q.OrderBy)}}, nil
}

func TestPaperService_Leaderboards(t *testing.T) {
	ctx := context.Background()

	t.Run("three concurrent boards", func(t *testing.T) {
		repo := &boardRepo{}
		svc := NewPaperService(nil, repo, nil, 0)

		lb, err := svc.Leaderboards(ctx)
		require.NoError(t, err)
		assert.Equal(t, "uploadDate", lb.Recent[0].ID)
		assert.Equal(t, "previewCount", lb.PopularPreview[0].ID)
		assert.Equal(t, "downloadCount", lb.PopularDownload[0].ID)

		require.Len(t, repo.queries, 3)
		for _, q := range repo.queries {
			assert.Equal(t, LeaderboardSize, q.Limit)
			assert.Equal(t, repository.Desc, q.Direction)
		}
	})

	t.Run("any failure fails the call", func(t *testing.T) {
		svc := NewPaperService(nil, &boardRepo{failOn: repository.OrderByPreviewCount}, nil, 0)
		lb, err := svc.Leaderboards(ctx)
		assert.Nil(t, lb)
		assert.ErrorContains(t, err, "leaderboard previewCount")
	})
}

func TestPaperService_GetAndSummary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		id          string
		setupMocks  func(mRepo *repoMocks.MockPaperRepository)
		wantSummary string
		wantErr     error
	}{
		{
			name: "summary preferred",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "a").Return(&model.Paper{ID: "a", Summary: "s", Abstract: "abs"}, nil)
			},
			wantSummary: "s",
		},
		{
			name: "abstract fallback",
			id:   "b",
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "b").Return(&model.Paper{ID: "b", Abstract: "abs"}, nil)
			},
			wantSummary: "abs",
		},
		{
			name: "neither",
			id:   "c",
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "c").Return(&model.Paper{ID: "c"}, nil)
			},
			wantSummary: "",
		},
		{
			name:       "validation - empty id",
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing",
			setupMocks: func(mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockPaperRepository)
			svc := NewPaperService(nil, mRepo, nil, 0)
			tt.setupMocks(mRepo)

			got, err := svc.Summary(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSummary, got)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestPaperService_GetPassesThroughErrors(t *testing.T) {
	mRepo := new(repoMocks.MockPaperRepository)
	mRepo.On("FindByID", mock.Anything, "x").Return(nil, errors.New("db fail"))
	_, err := NewPaperService(nil, mRepo, nil, 0).Get(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, strings.Contains(err.Error(), "db fail"))
}
