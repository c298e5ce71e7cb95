package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage)

type WSRouter struct {
	routes   map[string]HandlerFunc
	notFound HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{
		routes: make(map[string]HandlerFunc),
		notFound: func(_ context.Context, conn *websocket.Conn, _ json.RawMessage) {
			conn.WriteJSON(map[string]string{"error": "unknown message type"})
		},
	}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

func (r *WSRouter) HandleNotFound(handler HandlerFunc) {
	r.notFound = handler
}

// ServeConn reads messages from the connection until it fails and dispatches
// each one by type. A panicking handler is contained to that one message so a
// bad payload cannot take down the connection.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			handler = r.notFound
		}

		r.dispatch(context.WithValue(ctx, messageTypeKey, msg.Type), conn, handler, msg.Payload)
	}
}

func (r *WSRouter) dispatch(ctx context.Context, conn *websocket.Conn, handler HandlerFunc, payload json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			conn.WriteJSON(map[string]string{"error": fmt.Sprintf("internal error: %v", rec)})
		}
	}()

	handler(ctx, conn, payload)
}
