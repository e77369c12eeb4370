// Package digest renders commitments into changelogs, announcements and
// grouped detail reports.
package digest

import (
	"fmt"
	"strings"

	"github.com/just-nibble/git-digest/internal/domain"
)

const (
	BucketBreaking = "Breaking Changes"
	BucketFixed    = "Fixed"
	BucketFeatures = "Features"
	BucketOther    = "Other Changes"
)

var bucketOrder = []string{BucketBreaking, BucketFixed, BucketFeatures, BucketOther}

// Bucket picks the changelog section of a commitment. Rules are checked top-down.
func Bucket(c domain.Commitment) string {
	switch {
	case c.Impact == domain.LevelHigh:
		return BucketBreaking
	case c.Priority == domain.LevelHigh:
		return BucketFixed
	case strings.Contains(strings.ToLower(c.Title), "feat"):
		return BucketFeatures
	default:
		return BucketOther
	}
}

// Changelog renders one "### <bucket>" section per non-empty bucket.
func Changelog(commitments []domain.Commitment) string {
	buckets := make(map[string][]domain.Commitment, len(bucketOrder))
	for _, c := range commitments {
		b := Bucket(c)
		buckets[b] = append(buckets[b], c)
	}

	sections := make([]string, 0, len(bucketOrder))
	for _, name := range bucketOrder {
		entries := buckets[name]
		if len(entries) == 0 {
			continue
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "### %s\n\n", name)
		for _, c := range entries {
			fmt.Fprintf(&sb, "- %s ([%s](%s))\n", c.Title, c.ShortID(), c.CommitURL())
		}
		sections = append(sections, sb.String())
	}

	return strings.Join(sections, "\n")
}
