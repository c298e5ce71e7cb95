package controller

import (
	"context"
	"net/http"

	"github.com/inkboard/server/internal/service/room"
)

func (c *controller) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connId, err := c.roomService.Connect(r.Context(), conn)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}
	defer c.disconnect(connId)
	defer c.releaseConnLock(conn)

	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "conn_id", connId, "error", err)
	}
}

// disconnect runs the full cleanup cascade after the read loop exits and
// tells each affected room what changed.
func (c *controller) disconnect(connId string) {
	ctx := context.Background()

	resp, err := c.roomService.Disconnect(ctx, &room.DisconnectParams{ConnId: connId})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "conn_id", connId, "error", err)
		return
	}

	for _, cleanup := range resp.Rooms {
		if cleanup.IsRoomDeleted {
			continue
		}

		c.broadcast(ctx, cleanup.Conns, &Output{
			Type: "user-left",
			Payload: map[string]any{
				"userId":   resp.User.UserId,
				"username": resp.User.Username,
			},
		})

		if cleanup.HostChanged != nil {
			c.broadcast(ctx, cleanup.Conns, &Output{
				Type:    "host-changed",
				Payload: map[string]any{"newHost": cleanup.HostChanged},
			})
		}
	}
}
