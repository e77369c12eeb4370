package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
)

// FeedStore defines an interface for feed persistence. Feeds are append-only.
type FeedStore interface {
	Create(ctx context.Context, feed domain.Feed) (*domain.Feed, error)
	// ListByProject returns feeds newest first. An empty feedType matches all types.
	ListByProject(ctx context.Context, projectID uint, feedType domain.FeedType, page, limit int) (*domain.Page[domain.Feed], error)
}
