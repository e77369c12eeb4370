package dtos

import "github.com/just-nibble/git-digest/internal/domain"

// PushAccepted is returned once a push has been classified.
type PushAccepted struct {
	Commitments int `json:"commitments"`
	Feeds       int `json:"feeds"`
}

// EventIgnored is returned for webhook events other than push.
type EventIgnored struct {
	Event string `json:"event"`
}

// UpdateCommitmentInput is the PATCH body for a commitment.
type UpdateCommitmentInput struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Priority    *domain.Level `json:"priority,omitempty"`
	Impact      *domain.Level `json:"impact,omitempty"`
	Channels    []string      `json:"channels,omitempty"`
}

func (in UpdateCommitmentInput) ToDomain() domain.CommitmentUpdate {
	return domain.CommitmentUpdate{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Impact:      in.Impact,
		Channels:    in.Channels,
	}
}
