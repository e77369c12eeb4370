package usecases

import (
	"context"
	"time"

	"github.com/just-nibble/git-digest/internal/classify"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/just-nibble/git-digest/pkg/git"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PushBatch is the ordered commit list of one push plus its context.
type PushBatch struct {
	Owner      string
	Repository domain.Repository
	Branch     string
	CompareURL string
	BindingID  uint
	Commits    []domain.PushCommit
}

type CommitClassifier interface {
	// Classify returns one persisted commitment per input commit, in input order.
	// Any failure aborts the whole batch and nothing is persisted.
	Classify(ctx context.Context, batch PushBatch) ([]domain.Commitment, error)
}

type ClassifierOption func(*commitClassifier)

// WithRules replaces the priority and impact tables.
func WithRules(rules classify.Rules) ClassifierOption {
	return func(c *commitClassifier) { c.rules = rules }
}

// WithWorkers bounds concurrent detail fetches. 1 fetches sequentially.
func WithWorkers(workers int) ClassifierOption {
	return func(c *commitClassifier) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

func WithRetry(attempts int, backoff time.Duration) ClassifierOption {
	return func(c *commitClassifier) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

// WithSkipExisting reuses stored commitments with the same repository and
// commit id instead of creating duplicates on webhook redelivery.
func WithSkipExisting(skip bool) ClassifierOption {
	return func(c *commitClassifier) { c.skipExisting = skip }
}

type commitClassifier struct {
	gitClient       git.GitClient
	commitmentStore repository.CommitmentStore
	log             zerolog.Logger
	rules           classify.Rules
	workers         int
	retryAttempts   int
	retryBackoff    time.Duration
	skipExisting    bool
}

func NewCommitClassifier(gitClient git.GitClient, commitmentStore repository.CommitmentStore, log zerolog.Logger, opts ...ClassifierOption) CommitClassifier {
	c := &commitClassifier{
		gitClient:       gitClient,
		commitmentStore: commitmentStore,
		log:             log,
		rules:           classify.DefaultRules(),
		workers:         1,
		retryAttempts:   1,
		retryBackoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *commitClassifier) Classify(ctx context.Context, batch PushBatch) ([]domain.Commitment, error) {
	if len(batch.Commits) == 0 {
		return nil, errcodes.Validation("push contains no commits")
	}

	assembled := make([]domain.Commitment, len(batch.Commits))
	pending := make([]int, 0, len(batch.Commits))

	for i, commit := range batch.Commits {
		if c.skipExisting {
			existing, err := c.commitmentStore.FindByNaturalKey(ctx, batch.Repository.FullName, commit.ID)
			if err == nil {
				c.log.Info().Str("repo", batch.Repository.FullName).Str("commit", commit.ID).Msg("reusing stored commitment")
				assembled[i] = *existing
				continue
			}
			if !errcodes.IsKind(err, errcodes.KindNotFound) {
				return nil, err
			}
		}
		pending = append(pending, i)
	}

	if err := c.fetchAll(ctx, batch, pending, assembled); err != nil {
		return nil, err
	}

	saved, err := c.commitmentStore.CreateBatch(ctx, assembled)
	if err != nil {
		c.log.Error().Err(err).Str("repo", batch.Repository.FullName).Msg("failed to persist commitments")
		return nil, err
	}

	c.log.Info().
		Str("repo", batch.Repository.FullName).
		Str("branch", batch.Branch).
		Int("commitments", len(saved)).
		Msg("push classified")
	return saved, nil
}

// fetchAll fills assembled[i] for every index in pending. Results land at
// their input position so ordering holds regardless of completion order.
func (c *commitClassifier) fetchAll(ctx context.Context, batch PushBatch, pending []int, assembled []domain.Commitment) error {
	if c.workers <= 1 {
		for _, i := range pending {
			commitment, err := c.classifyOne(ctx, batch, batch.Commits[i])
			if err != nil {
				return err
			}
			assembled[i] = commitment
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, i := range pending {
		g.Go(func() error {
			commitment, err := c.classifyOne(gctx, batch, batch.Commits[i])
			if err != nil {
				return err
			}
			assembled[i] = commitment
			return nil
		})
	}
	return g.Wait()
}

func (c *commitClassifier) classifyOne(ctx context.Context, batch PushBatch, commit domain.PushCommit) (domain.Commitment, error) {
	detail, err := c.fetchDetail(ctx, batch.Owner, batch.Repository.Name, commit.ID)
	if err != nil {
		c.log.Error().Err(err).Str("repo", batch.Repository.FullName).Str("commit", commit.ID).Msg("failed to fetch commit detail")
		return domain.Commitment{}, err
	}

	title, description := classify.SplitMessage(commit.Message)
	priority, impact := c.rules.Classify(commit.Message)

	files := make([]domain.FileChange, 0, len(detail.Files))
	for _, f := range detail.Files {
		files = append(files, domain.FileChange{
			FileName: f.Filename,
			Status:   fileStatus(f.Status),
			Patch:    f.Patch,
		})
	}

	return domain.Commitment{
		CommitID:    commit.ID,
		Title:       title,
		Description: description,
		Author: domain.Author{
			Name:     commit.Author.Name,
			Email:    commit.Author.Email,
			Username: commit.Author.Username,
		},
		Priority:   priority,
		Impact:     impact,
		Timestamp:  commit.Timestamp,
		Repository: batch.Repository,
		Changes: domain.Changes{
			Files: files,
			Stats: domain.ChangeStats{
				Additions: detail.Stats.Additions,
				Deletions: detail.Stats.Deletions,
				Total:     detail.Stats.Total,
			},
		},
		Channels: []string{domain.DefaultChannel},
		Metadata: domain.CommitMetadata{
			Branch:     batch.Branch,
			CompareURL: batch.CompareURL,
		},
		BindingID: batch.BindingID,
	}, nil
}

// fetchDetail retries retryable upstream failures with exponential backoff.
func (c *commitClassifier) fetchDetail(ctx context.Context, owner, repo, sha string) (*git.CommitDetail, error) {
	backoff := c.retryBackoff
	for attempt := 1; ; attempt++ {
		detail, err := c.gitClient.FetchCommitDetail(ctx, owner, repo, sha)
		if err == nil {
			return detail, nil
		}
		if attempt >= c.retryAttempts || !git.IsRetryable(err) {
			return nil, err
		}

		c.log.Warn().Err(err).Str("commit", sha).Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying commit detail fetch")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errcodes.Upstream(ctx.Err(), "fetch of commit %s cancelled", sha)
		case <-timer.C:
		}
		backoff *= 2
	}
}

// fileStatus folds renamed, copied and similar statuses into modified.
func fileStatus(status string) domain.FileStatus {
	s := domain.FileStatus(status)
	if s == domain.FileAdded || s == domain.FileRemoved {
		return s
	}
	return domain.FileModified
}
