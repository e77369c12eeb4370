package mocks

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/stretchr/testify/mock"
)

// FeedStore mock
type FeedStore struct {
	mock.Mock
}

func (m *FeedStore) Create(ctx context.Context, feed domain.Feed) (*domain.Feed, error) {
	args := m.Called(ctx, feed)
	created, _ := args.Get(0).(*domain.Feed)
	return created, args.Error(1)
}

func (m *FeedStore) ListByProject(ctx context.Context, projectID uint, feedType domain.FeedType, page, limit int) (*domain.Page[domain.Feed], error) {
	args := m.Called(ctx, projectID, feedType, page, limit)
	feeds, _ := args.Get(0).(*domain.Page[domain.Feed])
	return feeds, args.Error(1)
}
