package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/classify"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
)

type group struct {
	key         string
	commitments []domain.Commitment
}

// Details renders a grouped markdown report. now sets the header date.
func Details(commitments []domain.Commitment, cfg domain.DetailsConfig, now time.Time) (string, error) {
	return DetailsWithTypes(commitments, cfg, now, classify.DefaultTypeTable())
}

func DetailsWithTypes(commitments []domain.Commitment, cfg domain.DetailsConfig, now time.Time, types classify.TypeTable) (string, error) {
	switch cfg.Format {
	case domain.FormatMarkdown, "":
	case domain.FormatHTML:
		return "", errcodes.Validation("html details format is not implemented")
	default:
		return "", errcodes.Validation("unknown details format %q", cfg.Format)
	}

	groups, err := groupCommitments(commitments, cfg.GroupBy, types)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Update Details - %s\n\n", now.Format("Monday, January 2, 2006"))

	if cfg.IncludeStats {
		writeStats(&sb, commitments)
	}

	for _, g := range groups {
		fmt.Fprintf(&sb, "\n## %s\n", g.key)
		for _, c := range g.commitments {
			fmt.Fprintf(&sb, "\n### %s\n", c.Title)
			if c.Description != "" {
				fmt.Fprintf(&sb, "%s\n", c.Description)
			}

			sb.WriteString("\nDetails:\n")
			fmt.Fprintf(&sb, "- Author: %s (@%s)\n", c.Author.Name, c.Author.Username)
			fmt.Fprintf(&sb, "- Priority: %s\n", c.Priority)
			fmt.Fprintf(&sb, "- Impact: %s\n", c.Impact)

			if cfg.IncludeFileChanges && len(c.Changes.Files) > 0 {
				sb.WriteString("\nChanged Files:\n")
				for _, f := range c.Changes.Files {
					fmt.Fprintf(&sb, "- %s (%s)\n", f.FileName, f.Status)
				}
			}
		}
	}

	return sb.String(), nil
}

func writeStats(sb *strings.Builder, commitments []domain.Commitment) {
	var files, additions, deletions int
	for _, c := range commitments {
		files += len(c.Changes.Files)
		additions += c.Changes.Stats.Additions
		deletions += c.Changes.Stats.Deletions
	}

	sb.WriteString("Statistics:\n")
	fmt.Fprintf(sb, "- Total commits: %d\n", len(commitments))
	fmt.Fprintf(sb, "- Files changed: %d\n", files)
	fmt.Fprintf(sb, "- Lines added: %d\n", additions)
	fmt.Fprintf(sb, "- Lines removed: %d\n", deletions)
}

// groupCommitments keeps group keys in first-seen order.
func groupCommitments(commitments []domain.Commitment, by domain.GroupBy, types classify.TypeTable) ([]group, error) {
	var keyOf func(domain.Commitment) string
	switch by {
	case domain.GroupNone:
		return []group{{key: "all", commitments: commitments}}, nil
	case domain.GroupPriority:
		keyOf = func(c domain.Commitment) string { return string(c.Priority) }
	case domain.GroupImpact:
		keyOf = func(c domain.Commitment) string { return string(c.Impact) }
	case domain.GroupAuthor:
		keyOf = func(c domain.Commitment) string {
			if c.Author.Username != "" {
				return c.Author.Username
			}
			return c.Author.Name
		}
	case domain.GroupType:
		keyOf = func(c domain.Commitment) string { return types.Type(c.Title) }
	default:
		return nil, errcodes.Validation("unknown details groupBy %q", by)
	}

	index := make(map[string]int)
	groups := make([]group, 0)
	for _, c := range commitments {
		key := keyOf(c)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].commitments = append(groups[i].commitments, c)
	}
	return groups, nil
}
