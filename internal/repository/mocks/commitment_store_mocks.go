package mocks

import (
	"context"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/stretchr/testify/mock"
)

// CommitmentStore mock
type CommitmentStore struct {
	mock.Mock
}

func (m *CommitmentStore) CreateBatch(ctx context.Context, commitments []domain.Commitment) ([]domain.Commitment, error) {
	args := m.Called(ctx, commitments)
	saved, _ := args.Get(0).([]domain.Commitment)
	return saved, args.Error(1)
}

func (m *CommitmentStore) FindByNaturalKey(ctx context.Context, repoFullName, commitID string) (*domain.Commitment, error) {
	args := m.Called(ctx, repoFullName, commitID)
	commitment, _ := args.Get(0).(*domain.Commitment)
	return commitment, args.Error(1)
}

func (m *CommitmentStore) GetByCommitID(ctx context.Context, commitID string) (*domain.Commitment, error) {
	args := m.Called(ctx, commitID)
	commitment, _ := args.Get(0).(*domain.Commitment)
	return commitment, args.Error(1)
}

func (m *CommitmentStore) Query(ctx context.Context, query repository.CommitmentQuery) (*domain.Page[domain.Commitment], error) {
	args := m.Called(ctx, query)
	page, _ := args.Get(0).(*domain.Page[domain.Commitment])
	return page, args.Error(1)
}

func (m *CommitmentStore) Update(ctx context.Context, commitID string, update domain.CommitmentUpdate) (*domain.Commitment, error) {
	args := m.Called(ctx, commitID, update)
	commitment, _ := args.Get(0).(*domain.Commitment)
	return commitment, args.Error(1)
}

func (m *CommitmentStore) Stats(ctx context.Context, filter domain.CommitmentFilter) (*domain.CommitmentStats, error) {
	args := m.Called(ctx, filter)
	stats, _ := args.Get(0).(*domain.CommitmentStats)
	return stats, args.Error(1)
}

func (m *CommitmentStore) CreatedSince(ctx context.Context, repoFullName string, since time.Time) ([]domain.Commitment, error) {
	args := m.Called(ctx, repoFullName, since)
	commitments, _ := args.Get(0).([]domain.Commitment)
	return commitments, args.Error(1)
}
