package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/rs/zerolog"
)

// Generator turns an announcement context into prose.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Policy int

const (
	// PolicyFallback renders the changelog when generation fails.
	PolicyFallback Policy = iota
	// PolicyStrict returns the generation error.
	PolicyStrict
)

var errNoGenerator = errors.New("no announcement generator configured")

// AnnouncementContext summarises commitments for the generator. commitments must be non-empty.
func AnnouncementContext(commitments []domain.Commitment) string {
	first := commitments[0]

	start, end := first.Timestamp, first.Timestamp
	files := make(map[string]struct{})
	var additions, deletions int
	for _, c := range commitments {
		if c.Timestamp.Before(start) {
			start = c.Timestamp
		}
		if c.Timestamp.After(end) {
			end = c.Timestamp
		}
		for _, f := range c.Changes.Files {
			files[f.FileName] = struct{}{}
		}
		additions += c.Changes.Stats.Additions
		deletions += c.Changes.Stats.Deletions
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", first.Repository.FullName)
	fmt.Fprintf(&sb, "Branch: %s\n", first.Metadata.Branch)
	fmt.Fprintf(&sb, "Time Period: %s to %s\n\n", start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly))

	sb.WriteString("Changes Summary:\n")
	fmt.Fprintf(&sb, "- Total Commits: %d\n", len(commitments))
	fmt.Fprintf(&sb, "- Files Changed: %d\n", len(files))
	fmt.Fprintf(&sb, "- Total Additions: %d\n", additions)
	fmt.Fprintf(&sb, "- Total Deletions: %d\n\n", deletions)

	sb.WriteString("Commit Details:\n")
	for _, c := range commitments {
		names := make([]string, 0, len(c.Changes.Files))
		for _, f := range c.Changes.Files {
			names = append(names, f.FileName)
		}
		fmt.Fprintf(&sb, "- %s\n", c.Title)
		fmt.Fprintf(&sb, "  Impact: %s\n", c.Impact)
		fmt.Fprintf(&sb, "  Priority: %s\n", c.Priority)
		fmt.Fprintf(&sb, "  Files: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(&sb, "  Description: %s\n", c.Description)
	}

	return strings.TrimSpace(sb.String())
}

type Announcer struct {
	generator Generator
	timeout   time.Duration
	policy    Policy
	log       zerolog.Logger
}

// NewAnnouncer accepts a nil generator; announcements then follow the policy's failure path.
func NewAnnouncer(generator Generator, timeout time.Duration, policy Policy, log zerolog.Logger) *Announcer {
	return &Announcer{generator: generator, timeout: timeout, policy: policy, log: log}
}

// Announce generates prose for commitments. Under PolicyFallback a failed or
// empty generation yields the changelog instead.
func (a *Announcer) Announce(ctx context.Context, commitments []domain.Commitment) (string, error) {
	if len(commitments) == 0 {
		return "", errcodes.Validation("announcement needs at least one commitment")
	}

	content, err := a.generate(ctx, AnnouncementContext(commitments))
	if err == nil {
		return content, nil
	}

	if a.policy == PolicyStrict {
		a.log.Error().Err(err).Str("repo", commitments[0].Repository.FullName).Msg("announcement generation failed")
		return "", errcodes.Upstream(err, "failed to generate announcement")
	}

	a.log.Warn().Err(err).Str("repo", commitments[0].Repository.FullName).Msg("announcement generation failed, falling back to changelog")
	return Changelog(commitments), nil
}

func (a *Announcer) generate(ctx context.Context, prompt string) (string, error) {
	if a.generator == nil {
		return "", errNoGenerator
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	content, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("generator returned empty content")
	}
	return content, nil
}
