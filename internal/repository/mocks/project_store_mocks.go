package mocks

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/stretchr/testify/mock"
)

// ProjectStore mock
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) Save(ctx context.Context, project domain.Project) (*domain.Project, error) {
	args := m.Called(ctx, project)
	saved, _ := args.Get(0).(*domain.Project)
	return saved, args.Error(1)
}

func (m *ProjectStore) ByID(ctx context.Context, id uint) (*domain.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*domain.Project)
	return project, args.Error(1)
}

func (m *ProjectStore) ByRepository(ctx context.Context, repoFullName string) ([]domain.Project, error) {
	args := m.Called(ctx, repoFullName)
	projects, _ := args.Get(0).([]domain.Project)
	return projects, args.Error(1)
}

func (m *ProjectStore) Scheduled(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]domain.Project)
	return projects, args.Error(1)
}

// SubscriptionStore mock
type SubscriptionStore struct {
	mock.Mock
}

func (m *SubscriptionStore) Save(ctx context.Context, subscription domain.Subscription) (*domain.Subscription, error) {
	args := m.Called(ctx, subscription)
	saved, _ := args.Get(0).(*domain.Subscription)
	return saved, args.Error(1)
}

func (m *SubscriptionStore) ForProject(ctx context.Context, project domain.Project) ([]domain.Subscription, error) {
	args := m.Called(ctx, project)
	subscriptions, _ := args.Get(0).([]domain.Subscription)
	return subscriptions, args.Error(1)
}
