package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
)

// BindingStore defines an interface for installation binding persistence
type BindingStore interface {
	// Upsert creates the binding for installationID unless one exists, then
	// returns the stored row.
	Upsert(ctx context.Context, owner, repo string, installationID int64) (*domain.InstallationBinding, error)
}
