package usecases

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/digest"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/pkg/errcodes"
)

type CommitmentUsecase interface {
	Query(ctx context.Context, query repository.CommitmentQuery) (*domain.Page[domain.Commitment], error)
	Get(ctx context.Context, commitID string) (*domain.Commitment, error)
	Update(ctx context.Context, commitID string, update domain.CommitmentUpdate) (*domain.Commitment, error)
	Stats(ctx context.Context, filter domain.CommitmentFilter) (*domain.CommitmentStats, error)
	// Details renders a grouped report of every matching commitment, newest first.
	Details(ctx context.Context, filter domain.CommitmentFilter, cfg domain.DetailsConfig) (string, error)
}

type commitmentUsecase struct {
	commitmentStore repository.CommitmentStore
}

func NewCommitmentUsecase(commitmentStore repository.CommitmentStore) CommitmentUsecase {
	return &commitmentUsecase{commitmentStore: commitmentStore}
}

func (u *commitmentUsecase) Query(ctx context.Context, query repository.CommitmentQuery) (*domain.Page[domain.Commitment], error) {
	if query.Sort.By == "" {
		query.Sort.By = "createdAt"
	}
	if query.Sort.Direction == "" {
		query.Sort.Direction = domain.SortDesc
	}
	if err := validateSort(query.Sort); err != nil {
		return nil, err
	}
	if err := validateFilter(query.Filter); err != nil {
		return nil, err
	}

	return u.commitmentStore.Query(ctx, query)
}

func (u *commitmentUsecase) Get(ctx context.Context, commitID string) (*domain.Commitment, error) {
	if strings.TrimSpace(commitID) == "" {
		return nil, errcodes.Validation("commit id is required")
	}
	return u.commitmentStore.GetByCommitID(ctx, commitID)
}

func (u *commitmentUsecase) Update(ctx context.Context, commitID string, update domain.CommitmentUpdate) (*domain.Commitment, error) {
	if strings.TrimSpace(commitID) == "" {
		return nil, errcodes.Validation("commit id is required")
	}
	update.Title = strings.TrimSpace(update.Title)
	if update.Title == "" {
		return nil, errcodes.Validation("title is required")
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return nil, errcodes.Validation("invalid priority %q", *update.Priority)
	}
	if update.Impact != nil && !update.Impact.Valid() {
		return nil, errcodes.Validation("invalid impact %q", *update.Impact)
	}

	return u.commitmentStore.Update(ctx, commitID, update)
}

func (u *commitmentUsecase) Stats(ctx context.Context, filter domain.CommitmentFilter) (*domain.CommitmentStats, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return u.commitmentStore.Stats(ctx, filter)
}

func (u *commitmentUsecase) Details(ctx context.Context, filter domain.CommitmentFilter, cfg domain.DetailsConfig) (string, error) {
	if err := validateFilter(filter); err != nil {
		return "", err
	}

	var commitments []domain.Commitment
	for page := 1; ; page++ {
		result, err := u.commitmentStore.Query(ctx, repository.CommitmentQuery{
			Page:   page,
			Limit:  repository.MAXLIMIT,
			Filter: filter,
			Sort:   domain.CommitmentSort{By: "timestamp", Direction: domain.SortDesc},
		})
		if err != nil {
			return "", err
		}
		commitments = append(commitments, result.Items...)
		if page >= result.Meta.Pages {
			break
		}
	}

	return digest.Details(commitments, cfg, time.Now())
}

func validateSort(sort domain.CommitmentSort) error {
	if !slices.Contains(domain.CommitmentSortFields, sort.By) {
		return errcodes.InvalidSortField(sort.By, domain.CommitmentSortFields)
	}
	if sort.Direction != domain.SortAsc && sort.Direction != domain.SortDesc {
		return errcodes.Validation("invalid sort direction %q, must be asc or desc", sort.Direction)
	}
	return nil
}

func validateFilter(filter domain.CommitmentFilter) error {
	if filter.Priority != "" && !filter.Priority.Valid() {
		return errcodes.Validation("invalid priority %q", filter.Priority)
	}
	if filter.Impact != "" && !filter.Impact.Valid() {
		return errcodes.Validation("invalid impact %q", filter.Impact)
	}
	if filter.FileStatus != "" && !filter.FileStatus.Valid() {
		return errcodes.Validation("invalid file status %q", filter.FileStatus)
	}
	if r := filter.DateRange; r != nil && !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return errcodes.Validation("date range end is before start")
	}
	return nil
}
