package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)

	r.HandleFunc("/ws", c.handleWS)

	r.Get("/api/rooms", c.listRooms)
	r.Get("/api/rooms/{room-id}", c.getRoom)
	r.Get("/api/rooms/{room-id}/replay", c.getReplay)
	r.Get("/health", c.health)

	return r
}
