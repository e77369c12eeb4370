package usecases

import (
	"context"
	"strings"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/errcodes"
)

// BindingResolver maps an app installation to its persisted binding,
// creating the binding on first contact.
type BindingResolver interface {
	Resolve(ctx context.Context, owner, repo string, installationID int64) (*domain.InstallationBinding, error)
}

type bindingResolver struct {
	bindingStore repository.BindingStore
}

func NewBindingResolver(bindingStore repository.BindingStore) BindingResolver {
	return &bindingResolver{bindingStore: bindingStore}
}

func (r *bindingResolver) Resolve(ctx context.Context, owner, repo string, installationID int64) (*domain.InstallationBinding, error) {
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return nil, errcodes.Validation("owner and repo are required")
	}
	if installationID <= 0 {
		return nil, errcodes.Validation("installation id must be positive, got %d", installationID)
	}

	return r.bindingStore.Upsert(ctx, owner, repo, installationID)
}
