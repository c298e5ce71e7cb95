package connection

import "errors"

var (
	ErrAlreadyExists    = errors.New("connection already exists")
	ErrNotFound         = errors.New("connection not found")
	ErrNotAuthenticated = errors.New("connection not authenticated")
)

// Identity is the verified user behind a registered connection.
type Identity struct {
	UserId   string
	Username string
}
