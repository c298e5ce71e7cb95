package domain

import "time"

// User is the persisted account the identity collaborator vouches for. The
// engine never creates credentials; it only refreshes activity.
type User struct {
	Id         string    `json:"id"`
	Username   string    `json:"username"`
	LastActive time.Time `json:"lastActive"`
}
