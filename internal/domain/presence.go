package domain

import "time"

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cursor is ephemeral per-user presence state. It is never persisted and is
// considered absent once its age exceeds the presence TTL.
type Cursor struct {
	UserId    string    `json:"userId"`
	Username  string    `json:"username"`
	Position  Position  `json:"position"`
	Tool      string    `json:"tool"`
	Color     string    `json:"color"`
	Timestamp time.Time `json:"timestamp"`
}

type PresenceStatus string

const (
	PresenceActive PresenceStatus = "active"
	PresenceIdle   PresenceStatus = "idle"
	PresenceAway   PresenceStatus = "away"
)

// StatusAt classifies a cursor by age. The classification is derived at read
// time and never stored.
func (c Cursor) StatusAt(now time.Time) PresenceStatus {
	age := now.Sub(c.Timestamp)
	switch {
	case age <= time.Second:
		return PresenceActive
	case age <= 2*time.Second:
		return PresenceIdle
	default:
		return PresenceAway
	}
}
