package domain

// Project is owned by collaborators outside the core; it is only read here.
type Project struct {
	ID             uint     `json:"id"`
	Name           string   `json:"name"`
	RepoFullName   string   `json:"repo_full_name"`
	RepoURL        string   `json:"repo_url"`
	TeamID         *uint    `json:"team_id,omitempty"`
	DigestType     FeedType `json:"digest_type"`
	DigestSchedule string   `json:"digest_schedule,omitempty"`

	// Details, when set, attaches a grouped report to every feed.
	Details *DetailsConfig `json:"details,omitempty"`
}

type GroupBy string

const (
	GroupNone     GroupBy = ""
	GroupPriority GroupBy = "priority"
	GroupImpact   GroupBy = "impact"
	GroupAuthor   GroupBy = "author"
	GroupType     GroupBy = "type"
)

type DetailsFormat string

const (
	FormatMarkdown DetailsFormat = "markdown"
	FormatHTML     DetailsFormat = "html"
)

type DetailsConfig struct {
	GroupBy            GroupBy       `json:"group_by"`
	Format             DetailsFormat `json:"format"`
	IncludeStats       bool          `json:"include_stats"`
	IncludeFileChanges bool          `json:"include_file_changes"`
}

// DefaultDetailsConfig groups by conventional commit type with stats and files.
func DefaultDetailsConfig() DetailsConfig {
	return DetailsConfig{
		GroupBy:            GroupType,
		Format:             FormatMarkdown,
		IncludeStats:       true,
		IncludeFileChanges: true,
	}
}
