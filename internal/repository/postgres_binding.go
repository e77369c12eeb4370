package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBindingStore is a GORM-based implementation of BindingStore
type GormBindingStore struct {
	db *gorm.DB
}

// NewGormBindingStore initializes a new GormBindingStore
func NewGormBindingStore(db *gorm.DB) BindingStore {
	return &GormBindingStore{db: db}
}

func (s *GormBindingStore) Upsert(ctx context.Context, owner, repo string, installationID int64) (*domain.InstallationBinding, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	row := InstallationBinding{InstallationID: installationID, Owner: owner, Repo: repo}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "installation_id"}}, DoNothing: true}).
		Create(&row).
		Error
	if err != nil {
		return nil, storeError(err, "failed to upsert binding for installation %d", installationID)
	}

	var stored InstallationBinding
	err = s.db.WithContext(ctx).Where("installation_id = ?", installationID).Take(&stored).Error
	if err != nil {
		return nil, storeError(err, "binding for installation %d not found", installationID)
	}
	return stored.ToDomain(), nil
}
