package domain

import (
	"strings"
	"time"
)

// PushEvent is the subset of the GitHub push webhook payload the pipeline reads.
type PushEvent struct {
	Ref          string           `json:"ref"`
	Compare      string           `json:"compare"`
	Installation PushInstallation `json:"installation"`
	Repository   PushRepository   `json:"repository"`
	Commits      []PushCommit     `json:"commits"`
}

type PushInstallation struct {
	ID int64 `json:"id"`
}

type PushOwner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type PushRepository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Owner       PushOwner `json:"owner"`
	Description *string   `json:"description"`
}

type PushCommit struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
	Author    PushAuthor `json:"author"`
}

type PushAuthor struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Branch returns the ref without its refs/heads/ prefix.
func (e PushEvent) Branch() string {
	return strings.TrimPrefix(e.Ref, "refs/heads/")
}
