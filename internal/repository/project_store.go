package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
)

// ProjectStore defines an interface for reading projects
type ProjectStore interface {
	Save(ctx context.Context, project domain.Project) (*domain.Project, error)
	ByID(ctx context.Context, id uint) (*domain.Project, error)
	ByRepository(ctx context.Context, repoFullName string) ([]domain.Project, error)
	// Scheduled returns projects with a digest schedule.
	Scheduled(ctx context.Context) ([]domain.Project, error)
}
