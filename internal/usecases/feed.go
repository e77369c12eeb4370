package usecases

import (
	"context"
	"time"

	"github.com/just-nibble/git-digest/internal/digest"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/notify"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/rs/zerolog"
)

type Announcer interface {
	Announce(ctx context.Context, commitments []domain.Commitment) (string, error)
}

type Notifier interface {
	FanOut(ctx context.Context, subscriptions []domain.Subscription, content string) notify.Report
}

// FeedResult is a persisted feed and the outcome of notifying its subscribers.
type FeedResult struct {
	Feed   *domain.Feed
	Report notify.Report
}

type FeedUsecase interface {
	CreateFeed(ctx context.Context, project domain.Project, commitments []domain.Commitment, feedType domain.FeedType) (*FeedResult, error)
	FeedsByProject(ctx context.Context, projectID uint, feedType domain.FeedType, page, limit int) (*domain.Page[domain.Feed], error)
}

type feedUsecase struct {
	feedStore         repository.FeedStore
	subscriptionStore repository.SubscriptionStore
	projectStore      repository.ProjectStore
	announcer         Announcer
	notifier          Notifier
	log               zerolog.Logger
	now               func() time.Time
}

func NewFeedUsecase(feedStore repository.FeedStore, subscriptionStore repository.SubscriptionStore, projectStore repository.ProjectStore,
	announcer Announcer, notifier Notifier, log zerolog.Logger) FeedUsecase {
	return &feedUsecase{
		feedStore:         feedStore,
		subscriptionStore: subscriptionStore,
		projectStore:      projectStore,
		announcer:         announcer,
		notifier:          notifier,
		log:               log,
		now:               time.Now,
	}
}

func (u *feedUsecase) CreateFeed(ctx context.Context, project domain.Project, commitments []domain.Commitment, feedType domain.FeedType) (*FeedResult, error) {
	if len(commitments) == 0 {
		return nil, errcodes.Validation("feed needs at least one commitment")
	}

	var content string
	switch feedType {
	case domain.FeedAnnouncement:
		announcement, err := u.announcer.Announce(ctx, commitments)
		if err != nil {
			return nil, err
		}
		content = announcement
	case domain.FeedChangelog:
		content = digest.Changelog(commitments)
	default:
		return nil, errcodes.Validation("invalid feed type %q", feedType)
	}

	var details string
	if project.Details != nil {
		rendered, err := digest.Details(commitments, *project.Details, u.now())
		if err != nil {
			return nil, err
		}
		details = rendered
	}

	ids := make([]uint, 0, len(commitments))
	for _, c := range commitments {
		ids = append(ids, c.ID)
	}

	feed, err := u.feedStore.Create(ctx, domain.Feed{
		ProjectID: project.ID,
		Type:      feedType,
		Content:   content,
		Details:   details,
		Metadata: domain.FeedMetadata{
			CommitmentIDs: ids,
			CompareURL:    commitments[0].Metadata.CompareURL,
			Branch:        commitments[0].Metadata.Branch,
		},
	})
	if err != nil {
		return nil, err
	}

	subscriptions, err := u.subscriptionStore.ForProject(ctx, project)
	if err != nil {
		// the feed is already persisted; report the lookup failure and move on
		u.log.Error().Err(err).Uint("project_id", project.ID).Msg("failed to load subscriptions")
		return &FeedResult{Feed: feed}, nil
	}

	report := u.notifier.FanOut(ctx, subscriptions, feed.Content)
	u.log.Info().
		Uint("project_id", project.ID).
		Str("feed", feed.PublicID).
		Int("delivered", report.Succeeded()).
		Int("failed", len(report.Failures())).
		Msg("feed created")

	return &FeedResult{Feed: feed, Report: report}, nil
}

func (u *feedUsecase) FeedsByProject(ctx context.Context, projectID uint, feedType domain.FeedType, page, limit int) (*domain.Page[domain.Feed], error) {
	if feedType != "" && !feedType.Valid() {
		return nil, errcodes.Validation("invalid feed type %q", feedType)
	}
	if _, err := u.projectStore.ByID(ctx, projectID); err != nil {
		return nil, err
	}
	return u.feedStore.ListByProject(ctx, projectID, feedType, page, limit)
}
