package room

import "errors"

var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRoomNotFound      = errors.New("room not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrNotMember         = errors.New("not a room member")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrRoomFull          = errors.New("room is full")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInvalidSettings   = errors.New("max members below current membership")
	ErrRecordingDisabled = errors.New("session recording disabled")
)
