package domain

import "time"

type FeedType string

const (
	FeedAnnouncement FeedType = "announcement"
	FeedChangelog    FeedType = "changelog"
)

func (t FeedType) Valid() bool {
	return t == FeedAnnouncement || t == FeedChangelog
}

type FeedMetadata struct {
	CommitmentIDs []uint `json:"commitment_ids"`
	CompareURL    string `json:"compare_url"`
	Branch        string `json:"branch"`
}

// Feed is one digest instance. It is never modified after creation.
type Feed struct {
	ID        uint         `json:"id"`
	PublicID  string       `json:"public_id"`
	ProjectID uint         `json:"project_id"`
	Type      FeedType     `json:"type"`
	Content   string       `json:"content"`
	Details   string       `json:"details,omitempty"`
	Metadata  FeedMetadata `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
}
