package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// connLock returns the write mutex for a connection. gorilla/websocket
// allows a single concurrent writer per conn.
func (c *controller) connLock(conn *websocket.Conn) *sync.Mutex {
	mu, _ := c.writeLocks.LoadOrStore(conn, &sync.Mutex{})

	return mu.(*sync.Mutex)
}

func (c *controller) releaseConnLock(conn *websocket.Conn) {
	c.writeLocks.Delete(conn)
}

func (c *controller) writeJSON(conn *websocket.Conn, output *Output) error {
	mu := c.connLock(conn)
	mu.Lock()
	defer mu.Unlock()

	return conn.WriteJSON(output)
}

// broadcast delivers one event to every given connection. Delivery is
// best-effort: a send failure means the peer is gone and its own disconnect
// cleanup restores consistency, so the error is dropped.
func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) {
	for _, conn := range conns {
		if err := c.writeJSON(conn, output); err != nil {
			c.logger.DebugContext(ctx, "dropped broadcast to dead peer", "type", output.Type, "error", err)
		}
	}
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) {
	if err := c.writeJSON(conn, output); err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "type", output.Type, "error", err)
	}
}

// writeError reports an operation failure to the originating connection
// only. Errors are never broadcast.
func (c *controller) writeError(ctx context.Context, conn *websocket.Conn, err error) {
	c.writeToConn(ctx, conn, &Output{
		Type:    "error",
		Payload: map[string]string{"message": errorMessage(err)},
	})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrAuthRequired):
		return "authentication required"
	case errors.Is(err, room.ErrInvalidToken):
		return "invalid token"
	case errors.Is(err, room.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, room.ErrRoomFull):
		return "room is full"
	case errors.Is(err, room.ErrNotMember):
		return "not a room member"
	case errors.Is(err, room.ErrPermissionDenied):
		return "insufficient permissions"
	case errors.Is(err, room.ErrMemberNotFound):
		return "member not found"
	case errors.Is(err, room.ErrEmptyMessage):
		return "message is empty"
	case errors.Is(err, room.ErrInvalidSettings):
		return "invalid settings"
	case errors.Is(err, room.ErrRecordingDisabled):
		return "session recording is disabled for this room"
	case errors.Is(err, room.ErrInvalidPayload):
		return "malformed payload"
	default:
		return "internal error"
	}
}
