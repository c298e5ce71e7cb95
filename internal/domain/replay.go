package domain

import "time"

// RecordedOp is one entry of a room's session replay log.
type RecordedOp struct {
	Seq      int64     `json:"seq"`
	Kind     string    `json:"kind"`
	UserId   string    `json:"userId"`
	Username string    `json:"username"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}
