package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"gorm.io/gorm"
)

// GormFeedStore is a GORM-based implementation of FeedStore
type GormFeedStore struct {
	db *gorm.DB
}

// NewGormFeedStore initializes a new GormFeedStore
func NewGormFeedStore(db *gorm.DB) FeedStore {
	return &GormFeedStore{db: db}
}

func (s *GormFeedStore) Create(ctx context.Context, feed domain.Feed) (*domain.Feed, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	if feed.ID != 0 {
		return nil, errcodes.Validation("feed %d already exists and cannot be saved again", feed.ID)
	}
	if feed.PublicID == "" {
		feed.PublicID = uuid.NewString()
	}

	row := ToGormFeed(&feed)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, storeError(err, "failed to save feed for project %d", feed.ProjectID)
	}
	return row.ToDomain(), nil
}

func (s *GormFeedStore) ListByProject(ctx context.Context, projectID uint, feedType domain.FeedType, page, limit int) (*domain.Page[domain.Feed], error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	page, limit, offset := getPaginationInfo(page, limit)

	db := s.db.WithContext(ctx).Model(&Feed{}).Where("project_id = ?", projectID)
	if feedType != "" {
		db = db.Where("type = ?", string(feedType))
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, storeError(err, "failed to count feeds for project %d", projectID)
	}

	var rows []Feed
	err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, storeError(err, "failed to list feeds for project %d", projectID)
	}

	items := make([]domain.Feed, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].ToDomain())
	}
	return &domain.Page[domain.Feed]{Items: items, Meta: domain.NewPageMeta(page, limit, total)}, nil
}
