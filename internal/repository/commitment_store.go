package repository

import (
	"context"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
)

// CommitmentQuery is a validated listing request. Zero page or limit take defaults.
type CommitmentQuery struct {
	Page   int
	Limit  int
	Filter domain.CommitmentFilter
	Sort   domain.CommitmentSort
}

// CommitmentStore defines an interface for database operations
type CommitmentStore interface {
	// CreateBatch persists commitments in a single transaction. Entries that
	// already have an ID are returned unchanged.
	CreateBatch(ctx context.Context, commitments []domain.Commitment) ([]domain.Commitment, error)
	FindByNaturalKey(ctx context.Context, repoFullName, commitID string) (*domain.Commitment, error)
	GetByCommitID(ctx context.Context, commitID string) (*domain.Commitment, error)
	Query(ctx context.Context, query CommitmentQuery) (*domain.Page[domain.Commitment], error)
	Update(ctx context.Context, commitID string, update domain.CommitmentUpdate) (*domain.Commitment, error)
	Stats(ctx context.Context, filter domain.CommitmentFilter) (*domain.CommitmentStats, error)
	CreatedSince(ctx context.Context, repoFullName string, since time.Time) ([]domain.Commitment, error)
}
