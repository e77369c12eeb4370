package git

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/pkg/errcodes"
)

const DefaultBaseURL = "https://api.github.com"

// GitClient fetches file-level detail for a single commit.
type GitClient interface {
	FetchCommitDetail(ctx context.Context, owner, repo, sha string) (*CommitDetail, error)
}

// GitHubClient is a simple client for interacting with GitHub's API
type GitHubClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

// NewGitHubClient creates a new instance of GitHubClient with a timeout
func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitHubClient{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
	}
}

// CommitFile is one changed file of a commit
type CommitFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch,omitempty"`
}

// CommitStats holds line counts of a commit
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

// CommitDetail represents the JSON structure of GET /repos/{owner}/{repo}/commits/{ref}
type CommitDetail struct {
	SHA   string       `json:"sha"`
	Files []CommitFile `json:"files"`
	Stats CommitStats  `json:"stats"`
}

// StatusError carries a non-200 response status.
type StatusError struct {
	StatusCode  int
	RateLimited bool
}

func (e *StatusError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("rate limited: received status code %d", e.StatusCode)
	}
	return fmt.Sprintf("received status code %d", e.StatusCode)
}

// FetchCommitDetail fetches files and stats of a commit by its sha
func (c *GitHubClient) FetchCommitDetail(ctx context.Context, owner, repo, sha string) (*CommitDetail, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.BaseURL, owner, repo, sha)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errcodes.Upstream(err, "failed to create request for commit %s", sha)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errcodes.Upstream(err, "failed to fetch commit %s", sha)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{
			StatusCode:  resp.StatusCode,
			RateLimited: isRateLimited(resp),
		}
		return nil, errcodes.Upstream(statusErr, "failed to fetch commit %s", sha)
	}

	var detail CommitDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, errcodes.Upstream(err, "failed to decode commit %s response", sha)
	}

	return &detail, nil
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// IsRetryable reports whether a fetch error is worth another attempt.
// Cancellation and client errors other than rate limiting are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.RateLimited {
			return true
		}
		return statusErr.StatusCode >= http.StatusInternalServerError
	}

	return errcodes.IsKind(err, errcodes.KindUpstream)
}
