package domain

type ChannelKind string

const (
	ChannelEmail    ChannelKind = "email"
	ChannelSlack    ChannelKind = "slack"
	ChannelTelegram ChannelKind = "telegram"
)

func (k ChannelKind) Valid() bool {
	switch k {
	case ChannelEmail, ChannelSlack, ChannelTelegram:
		return true
	}
	return false
}

type ChannelConfig struct {
	Kind   ChannelKind            `json:"type"`
	Config map[string]interface{} `json:"config"`
}

type User struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// Subscription targets exactly one of ProjectID or TeamID.
type Subscription struct {
	ID        uint            `json:"id"`
	User      User            `json:"user"`
	ProjectID *uint           `json:"project_id,omitempty"`
	TeamID    *uint           `json:"team_id,omitempty"`
	Channels  []ChannelConfig `json:"channels"`
}

// HasSingleTarget reports whether exactly one of project and team is set.
func (s Subscription) HasSingleTarget() bool {
	return (s.ProjectID == nil) != (s.TeamID == nil)
}
