package mocks

import (
	"context"

	"github.com/just-nibble/git-digest/pkg/git"
	"github.com/stretchr/testify/mock"
)

// GitClient mock
type GitClient struct {
	mock.Mock
}

func (m *GitClient) FetchCommitDetail(ctx context.Context, owner, repo, sha string) (*git.CommitDetail, error) {
	args := m.Called(ctx, owner, repo, sha)
	detail, _ := args.Get(0).(*git.CommitDetail)
	return detail, args.Error(1)
}
