package seeder

import (
	"context"
	"fmt"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/config"
	"github.com/just-nibble/git-digest/pkg/validator"
	"github.com/rs/zerolog"
)

// SeedDatabase creates the configured project, and a subscriber for it, if
// no project tracks the repository yet. An empty repository seeds nothing.
func SeedDatabase(ctx context.Context, projects repository.ProjectStore, subscriptions repository.SubscriptionStore,
	cfg config.SeedConfig, log zerolog.Logger) (*domain.Project, error) {
	if cfg.Repository == "" {
		return nil, nil
	}

	_, name, ok := validator.SplitRepository(cfg.Repository)
	if !ok {
		return nil, fmt.Errorf("seed repository %q must be owner/name", cfg.Repository)
	}

	existing, err := projects.ByRepository(ctx, cfg.Repository)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	log.Info().Str("repo", cfg.Repository).Msg("seeding database with project")

	project, err := projects.Save(ctx, domain.Project{
		Name:           name,
		RepoFullName:   cfg.Repository,
		RepoURL:        "https://github.com/" + cfg.Repository,
		DigestType:     domain.FeedType(cfg.DigestType),
		DigestSchedule: cfg.DigestSchedule,
	})
	if err != nil {
		return nil, err
	}

	channels := seedChannels(cfg)
	if len(channels) == 0 {
		return project, nil
	}

	projectID := project.ID
	if _, err := subscriptions.Save(ctx, domain.Subscription{
		User:      domain.User{Email: cfg.SubscriberEmail},
		ProjectID: &projectID,
		Channels:  channels,
	}); err != nil {
		return nil, err
	}

	log.Info().Str("repo", cfg.Repository).Int("channels", len(channels)).Msg("database seeding completed")
	return project, nil
}

func seedChannels(cfg config.SeedConfig) []domain.ChannelConfig {
	var channels []domain.ChannelConfig
	if cfg.SubscriberEmail != "" {
		channels = append(channels, domain.ChannelConfig{Kind: domain.ChannelEmail})
	}
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, domain.ChannelConfig{
			Kind:   domain.ChannelSlack,
			Config: map[string]interface{}{"webhook_url": cfg.SlackWebhookURL},
		})
	}
	if cfg.TelegramChatID != "" {
		channels = append(channels, domain.ChannelConfig{
			Kind:   domain.ChannelTelegram,
			Config: map[string]interface{}{"chat_id": cfg.TelegramChatID},
		})
	}
	return channels
}
