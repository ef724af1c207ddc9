package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperlib/internal/model"
	"paperlib/internal/service"
)

type MockPaperService struct {
	mock.Mock
}

func (m *MockPaperService) List(ctx context.Context, p service.ListParams) (*service.ListResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockPaperService) Leaderboards(ctx context.Context) (*service.Leaderboards, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Leaderboards), args.Error(1)
}

func (m *MockPaperService) Get(ctx context.Context, id string) (*model.Paper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) Summary(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockPaperService) Summarize(ctx context.Context, fileName, id string) (string, error) {
	args := m.Called(ctx, fileName, id)
	return args.String(0), args.Error(1)
}

func (m *MockPaperService) Upload(ctx context.Context, in service.UploadInput) (*model.Paper, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) Register(ctx context.Context, in service.RegisterInput) (*model.Paper, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) Delete(ctx context.Context, id, fileName string) error {
	args := m.Called(ctx, id, fileName)
	return args.Error(0)
}
