package room

import "time"

// Listing is the public-directory projection of a room.
type Listing struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	MemberCount  int       `json:"memberCount"`
	MaxMembers   int       `json:"maxMembers"`
	HostId       string    `json:"hostId"`
	HostUsername string    `json:"hostUsername"`
	Created      time.Time `json:"created"`
}
