package domain

import "time"

// InstallationBinding ties an app installation to an owner/repo pair.
type InstallationBinding struct {
	ID             uint      `json:"id"`
	InstallationID int64     `json:"installation_id"`
	Owner          string    `json:"owner"`
	Repo           string    `json:"repo"`
	CreatedAt      time.Time `json:"created_at"`
}
