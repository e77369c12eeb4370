package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/internal/usecases"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultLookback bounds the first scheduled digest of a project.
const DefaultLookback = 24 * time.Hour

// Scheduler creates a feed per project on the project's cron schedule from
// the commitments stored since the previous run.
type Scheduler struct {
	cron        *cron.Cron
	projects    repository.ProjectStore
	commitments repository.CommitmentStore
	feeds       usecases.FeedUsecase
	log         zerolog.Logger
	now         func() time.Time

	mu      sync.Mutex
	lastRun map[uint]time.Time
}

func NewScheduler(projects repository.ProjectStore, commitments repository.CommitmentStore, feeds usecases.FeedUsecase, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		projects:    projects,
		commitments: commitments,
		feeds:       feeds,
		log:         log,
		now:         time.Now,
		lastRun:     make(map[uint]time.Time),
	}
}

// Start registers every scheduled project and starts the cron loop.
// Projects with an invalid schedule are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	projects, err := s.projects.Scheduled(ctx)
	if err != nil {
		return err
	}

	for _, project := range projects {
		_, err := s.cron.AddFunc(project.DigestSchedule, func() {
			if _, err := s.RunProject(ctx, project); err != nil {
				s.log.Error().Err(err).Uint("project_id", project.ID).Msg("scheduled digest failed")
			}
		})
		if err != nil {
			s.log.Warn().Err(err).Uint("project_id", project.ID).Str("schedule", project.DigestSchedule).Msg("invalid digest schedule")
			continue
		}
	}

	s.cron.Start()
	s.log.Info().Int("projects", len(projects)).Msg("digest scheduler started")
	return nil
}

// RunProject builds one digest for project. It returns nil when nothing new
// was stored. The window only advances once the feed is created.
func (s *Scheduler) RunProject(ctx context.Context, project domain.Project) (*usecases.FeedResult, error) {
	now := s.now()

	s.mu.Lock()
	since, ok := s.lastRun[project.ID]
	s.mu.Unlock()
	if !ok {
		since = now.Add(-DefaultLookback)
	}

	commitments, err := s.commitments.CreatedSince(ctx, project.RepoFullName, since)
	if err != nil {
		return nil, err
	}

	if len(commitments) == 0 {
		s.log.Debug().Uint("project_id", project.ID).Msg("no new commitments for scheduled digest")
		s.markRun(project.ID, now)
		return nil, nil
	}

	// a failed digest keeps its window for the next run
	result, err := s.feeds.CreateFeed(ctx, project, commitments, project.DigestType)
	if err != nil {
		return nil, err
	}
	s.markRun(project.ID, now)
	return result, nil
}

func (s *Scheduler) markRun(projectID uint, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[projectID] = at
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
