package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func newCommitment(id string, priority, impact domain.Level) domain.Commitment {
	return domain.Commitment{
		CommitID:    id,
		Title:       "commit " + id,
		Description: "body of " + id,
		Author:      domain.Author{Name: "Ada", Email: "ada@example.com", Username: "ada"},
		Priority:    priority,
		Impact:      impact,
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Repository:  domain.Repository{Name: "r", FullName: "o/r", URL: "https://github.com/o/r"},
		Changes: domain.Changes{
			Files: []domain.FileChange{{FileName: "main.go", Status: domain.FileModified}},
			Stats: domain.ChangeStats{Additions: 2, Deletions: 1, Total: 3},
		},
		Channels: []string{domain.DefaultChannel},
		Metadata: domain.CommitMetadata{Branch: "main", CompareURL: "https://github.com/o/r/compare/a...b"},
	}
}

func TestBindingUpsertConcurrent(t *testing.T) {
	store := NewGormBindingStore(setupDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			binding, err := store.Upsert(ctx, "o", "r", 42)
			errs[i] = err
			if err == nil {
				ids[i] = binding.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	store.(*GormBindingStore).db.Model(&InstallationBinding{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestBindingUpsertKeepsFirstContact(t *testing.T) {
	store := NewGormBindingStore(setupDB(t))
	ctx := context.Background()

	first, err := store.Upsert(ctx, "o", "r", 7)
	require.NoError(t, err)

	again, err := store.Upsert(ctx, "other", "repo", 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "o", again.Owner)
	assert.Equal(t, "r", again.Repo)
}

func TestCommitmentCreateBatchAndGet(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	saved, err := store.CreateBatch(ctx, []domain.Commitment{
		newCommitment("aaa", domain.LevelHigh, domain.LevelLow),
		newCommitment("bbb", domain.LevelLow, domain.LevelHigh),
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotZero(t, saved[0].ID)
	assert.Equal(t, "aaa", saved[0].CommitID)
	assert.Equal(t, "bbb", saved[1].CommitID)

	got, err := store.GetByCommitID(ctx, "bbb")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelHigh, got.Impact)
	assert.Equal(t, []string{"general"}, got.Channels)
	require.Len(t, got.Changes.Files, 1)
	assert.Equal(t, domain.FileModified, got.Changes.Files[0].Status)
	assert.Equal(t, "main", got.Metadata.Branch)

	_, err = store.GetByCommitID(ctx, "missing")
	assert.True(t, errcodes.IsKind(err, errcodes.KindNotFound))

	found, err := store.FindByNaturalKey(ctx, "o/r", "aaa")
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, found.ID)
}

func TestCommitmentCreateBatchKeepsExisting(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	existing := newCommitment("aaa", domain.LevelHigh, domain.LevelLow)
	existing.ID = 99

	saved, err := store.CreateBatch(ctx, []domain.Commitment{existing, newCommitment("bbb", domain.LevelLow, domain.LevelLow)})
	require.NoError(t, err)
	assert.EqualValues(t, 99, saved[0].ID)
	assert.Equal(t, "bbb", saved[1].CommitID)

	var count int64
	store.(*GormCommitmentStore).db.Model(&Commitment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCommitmentQueryPagination(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	batch := make([]domain.Commitment, 0, 23)
	for i := 0; i < 23; i++ {
		batch = append(batch, newCommitment(fmt.Sprintf("c%02d", i), domain.LevelLow, domain.LevelLow))
	}
	_, err := store.CreateBatch(ctx, batch)
	require.NoError(t, err)

	page, err := store.Query(ctx, CommitmentQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 23, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.Pages)
	assert.Equal(t, 3, page.Meta.Page)
	assert.Len(t, page.Items, 3)

	first, err := store.Query(ctx, CommitmentQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Meta.Page)
	assert.Equal(t, 10, first.Meta.Limit)
	// newest first by default
	assert.Equal(t, "c22", first.Items[0].CommitID)

	empty, err := store.Query(ctx, CommitmentQuery{Filter: domain.CommitmentFilter{Repository: "nobody/none"}})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.EqualValues(t, 0, empty.Meta.Total)
	assert.Equal(t, 0, empty.Meta.Pages)
}

func TestCommitmentQueryFiltersAndSort(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	low := newCommitment("low", domain.LevelLow, domain.LevelLow)
	high := newCommitment("high", domain.LevelHigh, domain.LevelMedium)
	high.Title = "Fix urgent Crash"
	high.Changes.Files = []domain.FileChange{{FileName: "new.go", Status: domain.FileAdded}}
	high.Channels = []string{"release"}
	medium := newCommitment("medium", domain.LevelMedium, domain.LevelLow)
	medium.Timestamp = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	medium.Author.Username = "grace"
	medium.Metadata.Branch = "dev"

	_, err := store.CreateBatch(ctx, []domain.Commitment{low, high, medium})
	require.NoError(t, err)

	ids := func(page *domain.Page[domain.Commitment]) []string {
		out := make([]string, 0, len(page.Items))
		for _, c := range page.Items {
			out = append(out, c.CommitID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.CommitmentFilter
		want   []string
	}{
		{"priority", domain.CommitmentFilter{Priority: domain.LevelHigh}, []string{"high"}},
		{"impact", domain.CommitmentFilter{Impact: domain.LevelMedium}, []string{"high"}},
		{"search is case-insensitive", domain.CommitmentFilter{Search: "CRASH"}, []string{"high"}},
		{"file status", domain.CommitmentFilter{FileStatus: domain.FileAdded}, []string{"high"}},
		{"channels", domain.CommitmentFilter{Channels: []string{"release", "nope"}}, []string{"high"}},
		{"author", domain.CommitmentFilter{Author: "grace"}, []string{"medium"}},
		{"branch", domain.CommitmentFilter{Branch: "dev"}, []string{"medium"}},
		{"commit ids", domain.CommitmentFilter{CommitIDs: []string{"low", "medium"}}, []string{"medium", "low"}},
		{"date range open end", domain.CommitmentFilter{DateRange: &domain.DateRange{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}}, []string{"medium"}},
		{"date range inclusive", domain.CommitmentFilter{DateRange: &domain.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}}, []string{"high", "low"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.Query(ctx, CommitmentQuery{Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page))
		})
	}

	byPriority, err := store.Query(ctx, CommitmentQuery{Sort: domain.CommitmentSort{By: "priority", Direction: domain.SortDesc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "medium", "low"}, ids(byPriority))

	byTimestamp, err := store.Query(ctx, CommitmentQuery{Sort: domain.CommitmentSort{By: "timestamp", Direction: domain.SortAsc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high", "medium"}, ids(byTimestamp))

	_, err = store.Query(ctx, CommitmentQuery{Sort: domain.CommitmentSort{By: "title"}})
	require.Error(t, err)
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))
	assert.Contains(t, err.Error(), "must be one of: createdAt, updatedAt, timestamp, priority, impact, author.name")
	assert.ErrorIs(t, err, errcodes.ErrInvalidSortField)
}

func TestStoresRejectDoneContext(t *testing.T) {
	db := setupDB(t)
	commitments := NewGormCommitmentStore(db)
	bindings := NewGormBindingStore(db)
	feeds := NewGormFeedStore(db)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	for name, ctx := range map[string]context.Context{"cancelled": cancelled, "expired": expired} {
		t.Run(name, func(t *testing.T) {
			_, err := commitments.CreateBatch(ctx, []domain.Commitment{newCommitment("a", domain.LevelLow, domain.LevelLow)})
			assert.True(t, errcodes.IsKind(err, errcodes.KindCancelled))
			assert.ErrorIs(t, err, errcodes.ErrContextCancelled)
			assert.ErrorIs(t, err, ctx.Err())

			_, err = commitments.Query(ctx, CommitmentQuery{})
			assert.True(t, errcodes.IsKind(err, errcodes.KindCancelled))

			_, err = bindings.Upsert(ctx, "o", "r", 1)
			assert.True(t, errcodes.IsKind(err, errcodes.KindCancelled))

			_, err = feeds.ListByProject(ctx, 1, "", 1, 10)
			assert.True(t, errcodes.IsKind(err, errcodes.KindCancelled))
		})
	}

	var count int64
	require.NoError(t, db.Model(&Commitment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommitmentUpdate(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	_, err := store.CreateBatch(ctx, []domain.Commitment{newCommitment("aaa", domain.LevelLow, domain.LevelLow)})
	require.NoError(t, err)

	description := "rewritten"
	priority := domain.LevelHigh
	updated, err := store.Update(ctx, "aaa", domain.CommitmentUpdate{
		Title:       "new title",
		Description: &description,
		Priority:    &priority,
		Channels:    []string{"ops", "general", "ops"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "rewritten", updated.Description)
	assert.Equal(t, domain.LevelHigh, updated.Priority)
	assert.Equal(t, domain.LevelLow, updated.Impact)
	assert.Equal(t, []string{"ops", "general"}, updated.Channels)

	_, err = store.Update(ctx, "missing", domain.CommitmentUpdate{Title: "x"})
	assert.True(t, errcodes.IsKind(err, errcodes.KindNotFound))
}

func TestCommitmentStats(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	_, err := store.CreateBatch(ctx, []domain.Commitment{
		newCommitment("a", domain.LevelHigh, domain.LevelLow),
		newCommitment("b", domain.LevelHigh, domain.LevelMedium),
		newCommitment("c", domain.LevelLow, domain.LevelMedium),
	})
	require.NoError(t, err)

	stats, err := store.Stats(ctx, domain.CommitmentFilter{Repository: "o/r"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByPriority[domain.LevelHigh])
	assert.Equal(t, 1, stats.ByPriority[domain.LevelLow])
	assert.Equal(t, 2, stats.ByImpact[domain.LevelMedium])
	assert.Equal(t, 6, stats.Additions)
	assert.Equal(t, 3, stats.Deletions)
}

func TestCommitmentCreatedSince(t *testing.T) {
	store := NewGormCommitmentStore(setupDB(t))
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	_, err := store.CreateBatch(ctx, []domain.Commitment{newCommitment("a", domain.LevelLow, domain.LevelLow)})
	require.NoError(t, err)

	recent, err := store.CreatedSince(ctx, "o/r", before)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	none, err := store.CreatedSince(ctx, "o/r", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFeedStore(t *testing.T) {
	db := setupDB(t)
	store := NewGormFeedStore(db)
	ctx := context.Background()

	first, err := store.Create(ctx, domain.Feed{ProjectID: 1, Type: domain.FeedChangelog, Content: "one",
		Metadata: domain.FeedMetadata{CommitmentIDs: []uint{1, 2}, Branch: "main"}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.PublicID)
	assert.Equal(t, []uint{1, 2}, first.Metadata.CommitmentIDs)

	_, err = store.Create(ctx, domain.Feed{ProjectID: 1, Type: domain.FeedAnnouncement, Content: "two"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.Feed{ProjectID: 2, Type: domain.FeedChangelog, Content: "other"})
	require.NoError(t, err)

	page, err := store.ListByProject(ctx, 1, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "two", page.Items[0].Content)
	assert.EqualValues(t, 2, page.Meta.Total)

	changelogs, err := store.ListByProject(ctx, 1, domain.FeedChangelog, 0, 0)
	require.NoError(t, err)
	require.Len(t, changelogs.Items, 1)
	assert.Equal(t, "one", changelogs.Items[0].Content)

	_, err = store.Create(ctx, *first)
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	row := ToGormFeed(first)
	row.Content = "changed"
	err = db.Save(row).Error
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))
}

func TestSubscriptionStore(t *testing.T) {
	store := NewGormSubscriptionStore(setupDB(t))
	ctx := context.Background()

	projectID, teamID, otherID := uint(1), uint(5), uint(2)
	channels := []domain.ChannelConfig{{Kind: domain.ChannelSlack, Config: map[string]interface{}{"webhook_url": "https://hooks"}}}

	_, err := store.Save(ctx, domain.Subscription{User: domain.User{ID: 1, Email: "a@x.io"}, ProjectID: &projectID, Channels: channels})
	require.NoError(t, err)
	_, err = store.Save(ctx, domain.Subscription{User: domain.User{ID: 2, Email: "b@x.io"}, TeamID: &teamID, Channels: channels})
	require.NoError(t, err)
	_, err = store.Save(ctx, domain.Subscription{User: domain.User{ID: 3, Email: "c@x.io"}, ProjectID: &otherID})
	require.NoError(t, err)

	_, err = store.Save(ctx, domain.Subscription{User: domain.User{ID: 4}})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))
	_, err = store.Save(ctx, domain.Subscription{User: domain.User{ID: 4}, ProjectID: &projectID, TeamID: &teamID})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	withTeam, err := store.ForProject(ctx, domain.Project{ID: projectID, TeamID: &teamID})
	require.NoError(t, err)
	require.Len(t, withTeam, 2)
	assert.Equal(t, "a@x.io", withTeam[0].User.Email)
	assert.Equal(t, domain.ChannelSlack, withTeam[0].Channels[0].Kind)
	assert.Equal(t, "https://hooks", withTeam[0].Channels[0].Config["webhook_url"])

	withoutTeam, err := store.ForProject(ctx, domain.Project{ID: projectID})
	require.NoError(t, err)
	assert.Len(t, withoutTeam, 1)
}

func TestProjectStore(t *testing.T) {
	store := NewGormProjectStore(setupDB(t))
	ctx := context.Background()

	details := domain.DefaultDetailsConfig()
	saved, err := store.Save(ctx, domain.Project{Name: "web", RepoFullName: "o/r", DigestSchedule: "@daily", Details: &details})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedChangelog, saved.DigestType)

	_, err = store.Save(ctx, domain.Project{Name: "api", RepoFullName: "o/r", DigestType: domain.FeedAnnouncement})
	require.NoError(t, err)

	_, err = store.Save(ctx, domain.Project{Name: "bad", DigestType: "weekly"})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	_, err = store.Save(ctx, domain.Project{Name: "bad", RepoFullName: "o/r", DigestSchedule: "every other tuesday"})
	assert.True(t, errcodes.IsKind(err, errcodes.KindValidation))

	got, err := store.ByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Details)
	assert.Equal(t, domain.GroupType, got.Details.GroupBy)

	_, err = store.ByID(ctx, 999)
	assert.True(t, errcodes.IsKind(err, errcodes.KindNotFound))

	byRepo, err := store.ByRepository(ctx, "o/r")
	require.NoError(t, err)
	assert.Len(t, byRepo, 2)

	scheduled, err := store.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "web", scheduled[0].Name)
}
