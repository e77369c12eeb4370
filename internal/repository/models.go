package repository

import (
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"gorm.io/gorm"
)

// Migrate creates or updates every table owned by the stores.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&InstallationBinding{},
		&Commitment{},
		&CommitmentFile{},
		&CommitmentChannel{},
		&Project{},
		&Feed{},
		&Subscription{},
	)
}

type InstallationBinding struct {
	ID             uint  `gorm:"primaryKey"`
	InstallationID int64 `gorm:"uniqueIndex;not null"`
	Owner          string
	Repo           string
	CreatedAt      time.Time
}

func (b *InstallationBinding) ToDomain() *domain.InstallationBinding {
	return &domain.InstallationBinding{
		ID:             b.ID,
		InstallationID: b.InstallationID,
		Owner:          b.Owner,
		Repo:           b.Repo,
		CreatedAt:      b.CreatedAt,
	}
}

// Commitment is stored flat; files and channels live in child tables so they
// can be filtered with EXISTS subqueries.
type Commitment struct {
	ID             uint   `gorm:"primaryKey"`
	CommitID       string `gorm:"index:idx_commitment_natural_key,priority:2;not null"`
	RepoFullName   string `gorm:"index:idx_commitment_natural_key,priority:1"`
	RepoName       string
	RepoURL        string
	Title          string
	Description    string
	AuthorName     string `gorm:"index"`
	AuthorEmail    string
	AuthorUsername string    `gorm:"index"`
	Priority       string    `gorm:"index"`
	Impact         string    `gorm:"index"`
	CommittedAt    time.Time `gorm:"index"`
	Branch         string    `gorm:"index"`
	CompareURL     string
	Additions      int
	Deletions      int
	TotalChanges   int
	BindingID      uint                `gorm:"index"`
	Files          []CommitmentFile    `gorm:"foreignKey:CommitmentID;constraint:OnDelete:CASCADE"`
	Channels       []CommitmentChannel `gorm:"foreignKey:CommitmentID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"index"`
	UpdatedAt      time.Time
}

type CommitmentFile struct {
	ID           uint `gorm:"primaryKey"`
	CommitmentID uint `gorm:"index"`
	FileName     string
	Status       string `gorm:"index"`
	Patch        string
}

type CommitmentChannel struct {
	ID           uint   `gorm:"primaryKey"`
	CommitmentID uint   `gorm:"uniqueIndex:idx_commitment_channel"`
	Name         string `gorm:"uniqueIndex:idx_commitment_channel;index"`
}

func (c *Commitment) ToDomain() *domain.Commitment {
	files := make([]domain.FileChange, 0, len(c.Files))
	for _, f := range c.Files {
		files = append(files, domain.FileChange{
			FileName: f.FileName,
			Status:   domain.FileStatus(f.Status),
			Patch:    f.Patch,
		})
	}

	channels := make([]string, 0, len(c.Channels))
	for _, ch := range c.Channels {
		channels = append(channels, ch.Name)
	}

	return &domain.Commitment{
		ID:          c.ID,
		CommitID:    c.CommitID,
		Title:       c.Title,
		Description: c.Description,
		Author: domain.Author{
			Name:     c.AuthorName,
			Email:    c.AuthorEmail,
			Username: c.AuthorUsername,
		},
		Priority:  domain.Level(c.Priority),
		Impact:    domain.Level(c.Impact),
		Timestamp: c.CommittedAt,
		Repository: domain.Repository{
			Name:     c.RepoName,
			FullName: c.RepoFullName,
			URL:      c.RepoURL,
		},
		Changes: domain.Changes{
			Files: files,
			Stats: domain.ChangeStats{
				Additions: c.Additions,
				Deletions: c.Deletions,
				Total:     c.TotalChanges,
			},
		},
		Channels: channels,
		Metadata: domain.CommitMetadata{
			Branch:     c.Branch,
			CompareURL: c.CompareURL,
		},
		BindingID: c.BindingID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToGormCommitment(c *domain.Commitment) *Commitment {
	files := make([]CommitmentFile, 0, len(c.Changes.Files))
	for _, f := range c.Changes.Files {
		files = append(files, CommitmentFile{FileName: f.FileName, Status: string(f.Status), Patch: f.Patch})
	}

	return &Commitment{
		ID:             c.ID,
		CommitID:       c.CommitID,
		RepoFullName:   c.Repository.FullName,
		RepoName:       c.Repository.Name,
		RepoURL:        c.Repository.URL,
		Title:          c.Title,
		Description:    c.Description,
		AuthorName:     c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorUsername: c.Author.Username,
		Priority:       string(c.Priority),
		Impact:         string(c.Impact),
		CommittedAt:    c.Timestamp,
		Branch:         c.Metadata.Branch,
		CompareURL:     c.Metadata.CompareURL,
		Additions:      c.Changes.Stats.Additions,
		Deletions:      c.Changes.Stats.Deletions,
		TotalChanges:   c.Changes.Stats.Total,
		BindingID:      c.BindingID,
		Files:          files,
		Channels:       toGormChannels(c.Channels),
	}
}

func toGormChannels(names []string) []CommitmentChannel {
	seen := make(map[string]struct{}, len(names))
	channels := make([]CommitmentChannel, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		channels = append(channels, CommitmentChannel{Name: name})
	}
	return channels
}

type Project struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	RepoFullName   string `gorm:"index"`
	RepoURL        string
	TeamID         *uint  `gorm:"index"`
	DigestType     string `gorm:"default:changelog"`
	DigestSchedule string
	Details        *domain.DetailsConfig `gorm:"serializer:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Project) ToDomain() *domain.Project {
	digestType := domain.FeedType(p.DigestType)
	if digestType == "" {
		digestType = domain.FeedChangelog
	}
	return &domain.Project{
		ID:             p.ID,
		Name:           p.Name,
		RepoFullName:   p.RepoFullName,
		RepoURL:        p.RepoURL,
		TeamID:         p.TeamID,
		DigestType:     digestType,
		DigestSchedule: p.DigestSchedule,
		Details:        p.Details,
	}
}

func ToGormProject(p *domain.Project) *Project {
	return &Project{
		ID:             p.ID,
		Name:           p.Name,
		RepoFullName:   p.RepoFullName,
		RepoURL:        p.RepoURL,
		TeamID:         p.TeamID,
		DigestType:     string(p.DigestType),
		DigestSchedule: p.DigestSchedule,
		Details:        p.Details,
	}
}

type Feed struct {
	ID        uint   `gorm:"primaryKey"`
	PublicID  string `gorm:"uniqueIndex;not null"`
	ProjectID uint   `gorm:"index"`
	Type      string `gorm:"index"`
	Content   string
	Details   string
	Metadata  domain.FeedMetadata `gorm:"serializer:json"`
	CreatedAt time.Time           `gorm:"index"`
}

// BeforeUpdate rejects any write to a persisted feed.
func (f *Feed) BeforeUpdate(tx *gorm.DB) error {
	return errcodes.Validation("feed %s is immutable", f.PublicID)
}

func (f *Feed) ToDomain() *domain.Feed {
	return &domain.Feed{
		ID:        f.ID,
		PublicID:  f.PublicID,
		ProjectID: f.ProjectID,
		Type:      domain.FeedType(f.Type),
		Content:   f.Content,
		Details:   f.Details,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
	}
}

func ToGormFeed(f *domain.Feed) *Feed {
	return &Feed{
		ID:        f.ID,
		PublicID:  f.PublicID,
		ProjectID: f.ProjectID,
		Type:      string(f.Type),
		Content:   f.Content,
		Details:   f.Details,
		Metadata:  f.Metadata,
	}
}

type Subscription struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	UserEmail string
	ProjectID *uint                  `gorm:"index"`
	TeamID    *uint                  `gorm:"index"`
	Channels  []domain.ChannelConfig `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeSave enforces that a subscription targets exactly one of project or team.
func (s *Subscription) BeforeSave(tx *gorm.DB) error {
	if (s.ProjectID == nil) == (s.TeamID == nil) {
		return errcodes.Validation("subscription must target exactly one of project or team")
	}
	return nil
}

func (s *Subscription) ToDomain() *domain.Subscription {
	return &domain.Subscription{
		ID:        s.ID,
		User:      domain.User{ID: s.UserID, Email: s.UserEmail},
		ProjectID: s.ProjectID,
		TeamID:    s.TeamID,
		Channels:  s.Channels,
	}
}

func ToGormSubscription(s *domain.Subscription) *Subscription {
	return &Subscription{
		ID:        s.ID,
		UserID:    s.User.ID,
		UserEmail: s.User.Email,
		ProjectID: s.ProjectID,
		TeamID:    s.TeamID,
		Channels:  s.Channels,
	}
}
