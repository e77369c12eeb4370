package domain

import "time"

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}

type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
)

func (s FileStatus) Valid() bool {
	switch s {
	case FileAdded, FileModified, FileRemoved:
		return true
	}
	return false
}

// DefaultChannel is assigned to every freshly classified commitment.
const DefaultChannel = "general"

type Author struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	URL      string `json:"url"`
}

type FileChange struct {
	FileName string     `json:"file_name"`
	Status   FileStatus `json:"status"`
	Patch    string     `json:"patch,omitempty"`
}

type ChangeStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

type Changes struct {
	Files []FileChange `json:"files"`
	Stats ChangeStats  `json:"stats"`
}

type CommitMetadata struct {
	Branch     string `json:"branch"`
	CompareURL string `json:"compare_url"`
}

// Commitment is the classified, persisted representation of one commit.
type Commitment struct {
	ID          uint           `json:"id"`
	CommitID    string         `json:"commit_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Author      Author         `json:"author"`
	Priority    Level          `json:"priority"`
	Impact      Level          `json:"impact"`
	Timestamp   time.Time      `json:"timestamp"`
	Repository  Repository     `json:"repository"`
	Changes     Changes        `json:"changes"`
	Channels    []string       `json:"channels"`
	Metadata    CommitMetadata `json:"metadata"`
	BindingID   uint           `json:"binding_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ShortID returns the first seven characters of the commit id.
func (c Commitment) ShortID() string {
	if len(c.CommitID) <= 7 {
		return c.CommitID
	}
	return c.CommitID[:7]
}

// CommitURL links to the commit on the hosting platform.
func (c Commitment) CommitURL() string {
	return c.Repository.URL + "/commit/" + c.CommitID
}

// CommitmentUpdate lists the only fields editable after classification.
type CommitmentUpdate struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Priority    *Level   `json:"priority,omitempty"`
	Impact      *Level   `json:"impact,omitempty"`
	Channels    []string `json:"channels,omitempty"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CommitmentFilter fields are optional and combined with AND.
type CommitmentFilter struct {
	CommitIDs  []string   `json:"commit_ids,omitempty"`
	Repository string     `json:"repository,omitempty"`
	Priority   Level      `json:"priority,omitempty"`
	Impact     Level      `json:"impact,omitempty"`
	Author     string     `json:"author,omitempty"`
	Branch     string     `json:"branch,omitempty"`
	DateRange  *DateRange `json:"date_range,omitempty"`
	Search     string     `json:"search,omitempty"`
	FileStatus FileStatus `json:"file_status,omitempty"`
	Channels   []string   `json:"channels,omitempty"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type CommitmentSort struct {
	By        string        `json:"by"`
	Direction SortDirection `json:"direction"`
}

// CommitmentSortFields is the allow-list of sortable fields.
var CommitmentSortFields = []string{"createdAt", "updatedAt", "timestamp", "priority", "impact", "author.name"}

type CommitmentStats struct {
	Total      int           `json:"total"`
	ByPriority map[Level]int `json:"by_priority"`
	ByImpact   map[Level]int `json:"by_impact"`
	Additions  int           `json:"additions"`
	Deletions  int           `json:"deletions"`
}
