package mocks

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/stretchr/testify/mock"
)

// BindingStore mock
type BindingStore struct {
	mock.Mock
}

func (m *BindingStore) Upsert(ctx context.Context, owner, repo string, installationID int64) (*domain.InstallationBinding, error) {
	args := m.Called(ctx, owner, repo, installationID)
	binding, _ := args.Get(0).(*domain.InstallationBinding)
	return binding, args.Error(1)
}
