package seeder

import (
	"context"
	"testing"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository/mocks"
	"github.com/just-nibble/git-digest/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSeedDatabase_Empty(t *testing.T) {
	projects := new(mocks.ProjectStore)
	subscriptions := new(mocks.SubscriptionStore)

	project, err := SeedDatabase(context.Background(), projects, subscriptions, config.SeedConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, project)
	projects.AssertNotCalled(t, "ByRepository", mock.Anything, mock.Anything)
}

func TestSeedDatabase_CreatesProjectAndSubscriber(t *testing.T) {
	projects := new(mocks.ProjectStore)
	subscriptions := new(mocks.SubscriptionStore)

	projects.On("ByRepository", mock.Anything, "o/r").Return([]domain.Project{}, nil)
	projects.On("Save", mock.Anything, mock.MatchedBy(func(p domain.Project) bool {
		return p.Name == "r" && p.RepoURL == "https://github.com/o/r" && p.DigestType == domain.FeedAnnouncement && p.DigestSchedule == "@daily"
	})).Return(&domain.Project{ID: 3, RepoFullName: "o/r"}, nil)
	subscriptions.On("Save", mock.Anything, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.ProjectID != nil && *s.ProjectID == 3 && s.TeamID == nil &&
			s.User.Email == "dev@example.com" && len(s.Channels) == 2 &&
			s.Channels[1].Config["webhook_url"] == "https://hooks.slack.com/x"
	})).Return(&domain.Subscription{ID: 1}, nil)

	project, err := SeedDatabase(context.Background(), projects, subscriptions, config.SeedConfig{
		Repository:      "o/r",
		DigestType:      "announcement",
		DigestSchedule:  "@daily",
		SubscriberEmail: "dev@example.com",
		SlackWebhookURL: "https://hooks.slack.com/x",
	}, zerolog.Nop())

	require.NoError(t, err)
	assert.EqualValues(t, 3, project.ID)
	subscriptions.AssertExpectations(t)
}

func TestSeedDatabase_ExistingProject(t *testing.T) {
	projects := new(mocks.ProjectStore)
	subscriptions := new(mocks.SubscriptionStore)
	projects.On("ByRepository", mock.Anything, "o/r").Return([]domain.Project{{ID: 9}}, nil)

	project, err := SeedDatabase(context.Background(), projects, subscriptions,
		config.SeedConfig{Repository: "o/r", SubscriberEmail: "dev@example.com"}, zerolog.Nop())

	require.NoError(t, err)
	assert.EqualValues(t, 9, project.ID)
	projects.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSeedDatabase_InvalidRepository(t *testing.T) {
	_, err := SeedDatabase(context.Background(), new(mocks.ProjectStore), new(mocks.SubscriptionStore),
		config.SeedConfig{Repository: "not-a-repo"}, zerolog.Nop())
	assert.Error(t, err)
}
