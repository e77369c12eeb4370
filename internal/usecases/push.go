package usecases

import (
	"context"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/just-nibble/git-digest/pkg/validator"
	"github.com/rs/zerolog"
)

type PushResult struct {
	Commitments []domain.Commitment
	Feeds       []*domain.Feed
}

type PushUsecase interface {
	// HandlePush classifies the commits of a push and creates a feed for
	// every project tracking the repository.
	HandlePush(ctx context.Context, event domain.PushEvent) (*PushResult, error)
}

type PushOption func(*pushUsecase)

// WithScheduledDigests leaves projects with a digest schedule to the
// scheduler, so a push only creates feeds for unscheduled projects.
func WithScheduledDigests(enabled bool) PushOption {
	return func(u *pushUsecase) { u.scheduledDigests = enabled }
}

type pushUsecase struct {
	resolver         BindingResolver
	classifier       CommitClassifier
	projectStore     repository.ProjectStore
	feeds            FeedUsecase
	log              zerolog.Logger
	scheduledDigests bool
}

func NewPushUsecase(resolver BindingResolver, classifier CommitClassifier, projectStore repository.ProjectStore, feeds FeedUsecase, log zerolog.Logger, opts ...PushOption) PushUsecase {
	u := &pushUsecase{
		resolver:     resolver,
		classifier:   classifier,
		projectStore: projectStore,
		feeds:        feeds,
		log:          log,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *pushUsecase) HandlePush(ctx context.Context, event domain.PushEvent) (*PushResult, error) {
	if event.Installation.ID <= 0 {
		return nil, errcodes.Validation("push has no installation id")
	}
	owner, repo, ok := validator.SplitRepository(event.Repository.FullName)
	if !ok {
		return nil, errcodes.Wrap(errcodes.ErrInvalidRepoName, errcodes.KindValidation, "repository full name must be owner/repo")
	}
	if len(event.Commits) == 0 {
		return nil, errcodes.Validation("push contains no commits")
	}
	if event.Repository.Owner.Login != "" {
		owner = event.Repository.Owner.Login
	}

	binding, err := u.resolver.Resolve(ctx, owner, repo, event.Installation.ID)
	if err != nil {
		return nil, err
	}

	name := event.Repository.Name
	if name == "" {
		name = repo
	}

	commitments, err := u.classifier.Classify(ctx, PushBatch{
		Owner: owner,
		Repository: domain.Repository{
			Name:     name,
			FullName: event.Repository.FullName,
			URL:      event.Repository.HTMLURL,
		},
		Branch:     event.Branch(),
		CompareURL: event.Compare,
		BindingID:  binding.ID,
		Commits:    event.Commits,
	})
	if err != nil {
		return nil, err
	}

	result := &PushResult{Commitments: commitments}

	projects, err := u.projectStore.ByRepository(ctx, event.Repository.FullName)
	if err != nil {
		u.log.Error().Err(err).Str("repo", event.Repository.FullName).Msg("failed to load projects for push")
		return result, nil
	}

	for _, project := range projects {
		if u.scheduledDigests && project.DigestSchedule != "" {
			u.log.Debug().Uint("project_id", project.ID).Msg("project digest is scheduled, skipping push feed")
			continue
		}
		feed, err := u.feeds.CreateFeed(ctx, project, commitments, project.DigestType)
		if err != nil {
			u.log.Error().Err(err).Uint("project_id", project.ID).Str("repo", event.Repository.FullName).Msg("failed to create feed")
			continue
		}
		result.Feeds = append(result.Feeds, feed.Feed)
	}

	return result, nil
}
