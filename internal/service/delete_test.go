package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"paperlib/internal/repository"
	repoMocks "paperlib/internal/repository/mocks"
	"paperlib/internal/storage"
	storeMocks "paperlib/internal/storage/mocks"
)

func TestPaperService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		fileName   string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			id:       "valid-id",
			fileName: "/papers/a%20b.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
				mStore.On("Delete", ctx, "papers/a b.pdf").Return(nil)
			},
		},
		{
			name: "record only when no file name",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:     "record failure is swallowed",
			id:       "repo-fail-id",
			fileName: "papers/a.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
				mStore.On("Delete", ctx, "papers/a.pdf").Return(nil)
			},
		},
		{
			name:     "missing object is success",
			id:       "id",
			fileName: "papers/gone.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "id").Return(repository.ErrNotFound)
				mStore.On("Delete", ctx, "papers/gone.pdf").Return(storage.ErrObjectNotFound)
			},
		},
		{
			name:     "storage failure is swallowed",
			id:       "id",
			fileName: "papers/a.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "id").Return(nil)
				mStore.On("Delete", ctx, "papers/a.pdf").Return(errors.New("storage fail"))
			},
		},
		{
			name:     "unsafe file name skips object delete",
			id:       "id",
			fileName: "../../secrets",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mRepo.On("Delete", ctx, "id").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockPaperRepository)
			svc := NewPaperService(mStore, mRepo, nil, 0)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id, tt.fileName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
