package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/service/room"
	"github.com/inkboard/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	// session
	mux.Handle("authenticate", handle(c, c.handleAuthenticate))

	// room lifecycle
	mux.Handle("create-room", handle(c, c.handleCreateRoom))
	mux.Handle("join-room", handle(c, c.handleJoinRoom))
	mux.Handle("leave-room", handle(c, c.handleLeaveRoom))
	mux.Handle("update-settings", handle(c, c.handleUpdateSettings))
	mux.Handle("promote-member", handle(c, c.handlePromoteMember))

	// board
	mux.Handle("draw-start", handle(c, c.handleDrawStart))
	mux.Handle("draw-move", handle(c, c.handleDrawMove))
	mux.Handle("draw-end", handle(c, c.handleDrawEnd))
	mux.Handle("draw-shape", handle(c, c.handleDrawShape))
	mux.Handle("add-text", handle(c, c.handleAddText))
	mux.Handle("add-media", handle(c, c.handleAddMedia))
	mux.Handle("remove-media", handle(c, c.handleRemoveMedia))
	mux.Handle("add-sticker", handle(c, c.handleAddSticker))
	mux.Handle("clear-board", handle(c, c.handleClearBoard))
	mux.Handle("undo", handle(c, c.handleUndo))
	mux.Handle("redo", handle(c, c.handleRedo))
	mux.Handle("apply-template", handle(c, c.handleApplyTemplate))

	// chat and presence
	mux.Handle("chat-message", handle(c, c.handleChatMessage))
	mux.Handle("cursor-move", handle(c, c.handleCursorMove))

	// recording
	mux.Handle("start-recording", handle(c, c.handleStartRecording))
	mux.Handle("stop-recording", handle(c, c.handleStopRecording))

	mux.HandleNotFound(func(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) {
		c.writeToConn(ctx, conn, &Output{
			Type:    "error",
			Payload: map[string]string{"message": "unknown message type"},
		})
	})

	return mux
}

// handle adapts a typed handler to the router: it decodes the payload,
// runs struct validation, and reports any failure to the originating
// connection only.
func handle[T any](c *controller, handler func(ctx context.Context, conn *websocket.Conn, input T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				c.logger.DebugContext(ctx, "failed to unmarshal payload",
					"type", wsrouter.GetMessageTypeFromCtx(ctx), "error", err)
				c.writeError(ctx, conn, room.ErrInvalidPayload)
				return
			}
		}

		if validationErrors, ok := c.validate.Validate(input); !ok {
			c.logger.DebugContext(ctx, "payload validation failed",
				"type", wsrouter.GetMessageTypeFromCtx(ctx), "errors", validationErrors)
			c.writeError(ctx, conn, room.ErrInvalidPayload)
			return
		}

		if err := handler(ctx, conn, input); err != nil {
			c.logger.DebugContext(ctx, "failed to handle message",
				"type", wsrouter.GetMessageTypeFromCtx(ctx), "error", err)
			c.writeError(ctx, conn, err)
		}
	}
}
