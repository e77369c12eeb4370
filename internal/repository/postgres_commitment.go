package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"gorm.io/gorm"
)

const levelRank = "CASE %s WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

var commitmentSortColumns = map[string]string{
	"createdAt":   "commitments.created_at",
	"updatedAt":   "commitments.updated_at",
	"timestamp":   "commitments.committed_at",
	"priority":    fmt.Sprintf(levelRank, "commitments.priority"),
	"impact":      fmt.Sprintf(levelRank, "commitments.impact"),
	"author.name": "commitments.author_name",
}

// GormCommitmentStore is a GORM-based implementation of CommitmentStore
type GormCommitmentStore struct {
	db *gorm.DB
}

// NewGormCommitmentStore initializes a new GormCommitmentStore
func NewGormCommitmentStore(db *gorm.DB) CommitmentStore {
	return &GormCommitmentStore{db: db}
}

func (s *GormCommitmentStore) CreateBatch(ctx context.Context, commitments []domain.Commitment) ([]domain.Commitment, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	saved := make([]domain.Commitment, len(commitments))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range commitments {
			if commitments[i].ID != 0 {
				saved[i] = commitments[i]
				continue
			}
			row := ToGormCommitment(&commitments[i])
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			saved[i] = *row.ToDomain()
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to save %d commitments", len(commitments))
	}
	return saved, nil
}

func (s *GormCommitmentStore) FindByNaturalKey(ctx context.Context, repoFullName, commitID string) (*domain.Commitment, error) {
	var row Commitment
	err := s.preload(s.db.WithContext(ctx)).
		Where("repo_full_name = ? AND commit_id = ?", repoFullName, commitID).
		Order("id DESC").
		Take(&row).
		Error
	if err != nil {
		return nil, storeError(err, "commitment %s in %s not found", commitID, repoFullName)
	}
	return row.ToDomain(), nil
}

// GetByCommitID returns the most recently stored commitment for commitID.
func (s *GormCommitmentStore) GetByCommitID(ctx context.Context, commitID string) (*domain.Commitment, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	var row Commitment
	err := s.preload(s.db.WithContext(ctx)).
		Where("commit_id = ?", commitID).
		Order("id DESC").
		Take(&row).
		Error
	if err != nil {
		return nil, storeError(err, "commitment %s not found", commitID)
	}
	return row.ToDomain(), nil
}

func (s *GormCommitmentStore) Query(ctx context.Context, query CommitmentQuery) (*domain.Page[domain.Commitment], error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	order, err := commitmentOrder(query.Sort)
	if err != nil {
		return nil, err
	}

	page, limit, offset := getPaginationInfo(query.Page, query.Limit)

	db := applyCommitmentFilter(s.db.WithContext(ctx).Model(&Commitment{}), query.Filter).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, storeError(err, "failed to count commitments")
	}

	var rows []Commitment
	err = s.preload(db).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, storeError(err, "failed to query commitments")
	}

	items := make([]domain.Commitment, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].ToDomain())
	}

	return &domain.Page[domain.Commitment]{
		Items: items,
		Meta:  domain.NewPageMeta(page, limit, total),
	}, nil
}

func (s *GormCommitmentStore) Update(ctx context.Context, commitID string, update domain.CommitmentUpdate) (*domain.Commitment, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Commitment
		if err := tx.Where("commit_id = ?", commitID).Order("id DESC").Take(&row).Error; err != nil {
			return err
		}
		id = row.ID

		updates := map[string]interface{}{"title": update.Title}
		if update.Description != nil {
			updates["description"] = *update.Description
		}
		if update.Priority != nil {
			updates["priority"] = string(*update.Priority)
		}
		if update.Impact != nil {
			updates["impact"] = string(*update.Impact)
		}
		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return err
		}

		if update.Channels == nil {
			return nil
		}
		if err := tx.Where("commitment_id = ?", row.ID).Delete(&CommitmentChannel{}).Error; err != nil {
			return err
		}
		channels := toGormChannels(update.Channels)
		if len(channels) == 0 {
			return nil
		}
		for i := range channels {
			channels[i].CommitmentID = row.ID
		}
		return tx.Create(&channels).Error
	})
	if err != nil {
		return nil, storeError(err, "commitment %s not found", commitID)
	}

	var row Commitment
	if err := s.preload(s.db.WithContext(ctx)).Take(&row, id).Error; err != nil {
		return nil, storeError(err, "commitment %s not found", commitID)
	}
	return row.ToDomain(), nil
}

type levelCount struct {
	Level string
	Count int
}

func (s *GormCommitmentStore) Stats(ctx context.Context, filter domain.CommitmentFilter) (*domain.CommitmentStats, error) {
	db := applyCommitmentFilter(s.db.WithContext(ctx).Model(&Commitment{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, storeError(err, "failed to count commitments")
	}

	var byPriority, byImpact []levelCount
	if err := db.Select("priority AS level, COUNT(*) AS count").Group("priority").Scan(&byPriority).Error; err != nil {
		return nil, storeError(err, "failed to aggregate priorities")
	}
	if err := db.Select("impact AS level, COUNT(*) AS count").Group("impact").Scan(&byImpact).Error; err != nil {
		return nil, storeError(err, "failed to aggregate impacts")
	}

	var sums struct {
		Additions int
		Deletions int
	}
	err := db.Select("COALESCE(SUM(additions), 0) AS additions, COALESCE(SUM(deletions), 0) AS deletions").
		Scan(&sums).
		Error
	if err != nil {
		return nil, storeError(err, "failed to sum line changes")
	}

	stats := &domain.CommitmentStats{
		Total:      int(total),
		ByPriority: make(map[domain.Level]int, len(byPriority)),
		ByImpact:   make(map[domain.Level]int, len(byImpact)),
		Additions:  sums.Additions,
		Deletions:  sums.Deletions,
	}
	for _, c := range byPriority {
		stats.ByPriority[domain.Level(c.Level)] = c.Count
	}
	for _, c := range byImpact {
		stats.ByImpact[domain.Level(c.Level)] = c.Count
	}
	return stats, nil
}

func (s *GormCommitmentStore) CreatedSince(ctx context.Context, repoFullName string, since time.Time) ([]domain.Commitment, error) {
	var rows []Commitment
	err := s.preload(s.db.WithContext(ctx)).
		Where("repo_full_name = ? AND created_at > ?", repoFullName, since).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, storeError(err, "failed to list commitments for %s", repoFullName)
	}

	commitments := make([]domain.Commitment, 0, len(rows))
	for i := range rows {
		commitments = append(commitments, *rows[i].ToDomain())
	}
	return commitments, nil
}

func (s *GormCommitmentStore) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Channels", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func commitmentOrder(sort domain.CommitmentSort) (string, error) {
	by := sort.By
	if by == "" {
		by = "createdAt"
	}
	column, ok := commitmentSortColumns[by]
	if !ok {
		return "", errcodes.InvalidSortField(by, domain.CommitmentSortFields)
	}

	direction := sort.Direction
	if direction == "" {
		direction = domain.SortDesc
	}
	if direction != domain.SortAsc && direction != domain.SortDesc {
		return "", errcodes.Validation("invalid sort direction %q, must be asc or desc", direction)
	}

	return fmt.Sprintf("%s %s, commitments.id %s", column, direction, direction), nil
}

func applyCommitmentFilter(db *gorm.DB, f domain.CommitmentFilter) *gorm.DB {
	if len(f.CommitIDs) > 0 {
		db = db.Where("commitments.commit_id IN ?", f.CommitIDs)
	}
	if f.Repository != "" {
		db = db.Where("commitments.repo_full_name = ?", f.Repository)
	}
	if f.Priority != "" {
		db = db.Where("commitments.priority = ?", string(f.Priority))
	}
	if f.Impact != "" {
		db = db.Where("commitments.impact = ?", string(f.Impact))
	}
	if f.Author != "" {
		db = db.Where("commitments.author_username = ?", f.Author)
	}
	if f.Branch != "" {
		db = db.Where("commitments.branch = ?", f.Branch)
	}
	if f.DateRange != nil {
		if !f.DateRange.Start.IsZero() {
			db = db.Where("commitments.committed_at >= ?", f.DateRange.Start)
		}
		if !f.DateRange.End.IsZero() {
			db = db.Where("commitments.committed_at <= ?", f.DateRange.End)
		}
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where("(LOWER(commitments.title) LIKE ? OR LOWER(commitments.description) LIKE ?)", pattern, pattern)
	}
	if f.FileStatus != "" {
		db = db.Where("EXISTS (SELECT 1 FROM commitment_files WHERE commitment_files.commitment_id = commitments.id AND commitment_files.status = ?)", string(f.FileStatus))
	}
	if len(f.Channels) > 0 {
		db = db.Where("EXISTS (SELECT 1 FROM commitment_channels WHERE commitment_channels.commitment_id = commitments.id AND commitment_channels.name IN ?)", f.Channels)
	}
	return db
}
