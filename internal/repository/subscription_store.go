package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
)

// SubscriptionStore defines an interface for subscription lookups
type SubscriptionStore interface {
	Save(ctx context.Context, subscription domain.Subscription) (*domain.Subscription, error)
	// ForProject returns subscriptions on the project or, when it has one, its team.
	ForProject(ctx context.Context, project domain.Project) ([]domain.Subscription, error)
}
