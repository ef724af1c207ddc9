package repository

import (
	"context"

	"paperlib/internal/model"
)

// PaperRepository defines data access for papers.
// No business logic here, strictly persistence operations.
type PaperRepository interface {
	// Create inserts a new paper. The store assigns the ID; the returned paper carries it.
	Create(ctx context.Context, p *model.Paper) (*model.Paper, error)

	// FindByID returns a paper by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Paper, error)

	// FindByFileName returns the paper whose object key is fileName, or ErrNotFound.
	FindByFileName(ctx context.Context, fileName string) (*model.Paper, error)

	// List returns one page of papers ordered and filtered per q.
	List(ctx context.Context, q ListQuery) ([]model.Paper, error)

	// UpdateSummary stores a generated summary on the paper, or returns ErrNotFound.
	UpdateSummary(ctx context.Context, id, summary string) error

	// Delete removes a paper by ID. It returns nil if the paper did not exist.
	Delete(ctx context.Context, id string) error
}
