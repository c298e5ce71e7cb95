package domain

import "time"

type Role string

const (
	RoleHost      Role = "host"
	RoleModerator Role = "moderator"
	RoleGuest     Role = "guest"
)

type Member struct {
	Id         string    `json:"id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joinedAt"`
	LastActive time.Time `json:"lastActive"`
}

type Settings struct {
	MaxMembers      int  `json:"maxMembers"`
	IsPublic        bool `json:"isPublic"`
	AllowGuests     bool `json:"allowGuests"`
	RecordSession   bool `json:"recordSession"`
	AllowChat       bool `json:"allowChat"`
	AllowVoiceNotes bool `json:"allowVoiceNotes"`
	AllowMediaEmbed bool `json:"allowMediaEmbed"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxMembers:      50,
		IsPublic:        true,
		AllowGuests:     true,
		RecordSession:   false,
		AllowChat:       true,
		AllowVoiceNotes: true,
		AllowMediaEmbed: true,
	}
}

// Room is the authoritative state of one collaborative session. Members are
// kept in join order; the successor scan during host migration relies on it.
type Room struct {
	Id           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	HostId       string     `json:"host"`
	Members      []Member   `json:"members"`
	Board        BoardState `json:"boardData"`
	Settings     Settings   `json:"settings"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"created"`
	LastActivity time.Time  `json:"lastActivity"`
}

func (r *Room) Member(userId string) *Member {
	for i := range r.Members {
		if r.Members[i].Id == userId {
			return &r.Members[i]
		}
	}

	return nil
}

func (r *Room) RemoveMember(userId string) bool {
	for i := range r.Members {
		if r.Members[i].Id == userId {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}

	return false
}
