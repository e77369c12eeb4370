package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// GormProjectStore is a GORM-based implementation of ProjectStore
type GormProjectStore struct {
	db *gorm.DB
}

// NewGormProjectStore initializes a new GormProjectStore
func NewGormProjectStore(db *gorm.DB) ProjectStore {
	return &GormProjectStore{db: db}
}

func (s *GormProjectStore) Save(ctx context.Context, project domain.Project) (*domain.Project, error) {
	if project.DigestType == "" {
		project.DigestType = domain.FeedChangelog
	}
	if !project.DigestType.Valid() {
		return nil, errcodes.Validation("invalid digest type %q", project.DigestType)
	}
	// same parser as the scheduler's cron.New()
	if project.DigestSchedule != "" {
		if _, err := cron.ParseStandard(project.DigestSchedule); err != nil {
			return nil, errcodes.Validation("invalid digest schedule %q: %v", project.DigestSchedule, err)
		}
	}

	row := ToGormProject(&project)
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, storeError(err, "failed to save project %s", project.Name)
	}
	return row.ToDomain(), nil
}

func (s *GormProjectStore) ByID(ctx context.Context, id uint) (*domain.Project, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	var row Project
	if err := s.db.WithContext(ctx).Take(&row, id).Error; err != nil {
		return nil, storeError(err, "project %d not found", id)
	}
	return row.ToDomain(), nil
}

func (s *GormProjectStore) ByRepository(ctx context.Context, repoFullName string) ([]domain.Project, error) {
	var rows []Project
	if err := s.db.WithContext(ctx).Where("repo_full_name = ?", repoFullName).Order("id").Find(&rows).Error; err != nil {
		return nil, storeError(err, "failed to load projects for %s", repoFullName)
	}
	return toDomainProjects(rows), nil
}

func (s *GormProjectStore) Scheduled(ctx context.Context) ([]domain.Project, error) {
	var rows []Project
	if err := s.db.WithContext(ctx).Where("digest_schedule <> ''").Order("id").Find(&rows).Error; err != nil {
		return nil, storeError(err, "failed to load scheduled projects")
	}
	return toDomainProjects(rows), nil
}

func toDomainProjects(rows []Project) []domain.Project {
	projects := make([]domain.Project, 0, len(rows))
	for i := range rows {
		projects = append(projects, *rows[i].ToDomain())
	}
	return projects
}
