package repository

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"gorm.io/gorm"
)

// GormSubscriptionStore is a GORM-based implementation of SubscriptionStore
type GormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore initializes a new GormSubscriptionStore
func NewGormSubscriptionStore(db *gorm.DB) SubscriptionStore {
	return &GormSubscriptionStore{db: db}
}

func (s *GormSubscriptionStore) Save(ctx context.Context, subscription domain.Subscription) (*domain.Subscription, error) {
	row := ToGormSubscription(&subscription)
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, storeError(err, "failed to save subscription for user %d", subscription.User.ID)
	}
	return row.ToDomain(), nil
}

func (s *GormSubscriptionStore) ForProject(ctx context.Context, project domain.Project) ([]domain.Subscription, error) {
	db := s.db.WithContext(ctx)
	if project.TeamID != nil {
		db = db.Where("project_id = ? OR team_id = ?", project.ID, *project.TeamID)
	} else {
		db = db.Where("project_id = ?", project.ID)
	}

	var rows []Subscription
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, storeError(err, "failed to load subscriptions for project %d", project.ID)
	}

	subscriptions := make([]domain.Subscription, 0, len(rows))
	for i := range rows {
		subscriptions = append(subscriptions, *rows[i].ToDomain())
	}
	return subscriptions, nil
}
