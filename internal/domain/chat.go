package domain

import "time"

type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
)

type ChatMessage struct {
	Id          string      `json:"id"`
	RoomId      string      `json:"roomId"`
	UserId      string      `json:"userId"`
	Username    string      `json:"username"`
	Message     string      `json:"message"`
	Type        MessageType `json:"type"`
	Attachments []string    `json:"attachments,omitempty"`
	ReplyTo     string      `json:"replyTo,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
