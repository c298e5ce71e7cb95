package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkboard/server/internal/service/room"
	"github.com/inkboard/server/pkg/rest"
)

func (c *controller) listRooms(w http.ResponseWriter, r *http.Request) {
	listings, err := c.roomService.ListPublicRooms(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to list rooms", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": listings})
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	}

	state, err := c.roomService.GetRoomState(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get room state", "room_id", roomId, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}

func (c *controller) getReplay(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	}

	ops, err := c.roomService.GetReplay(r.Context(), roomId)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get replay", "room_id", roomId, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": ops})
}

func (c *controller) health(w http.ResponseWriter, r *http.Request) {
	stats := c.roomService.Stats()

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":             "ok",
		"active_connections": stats.ActiveConnections,
		"active_rooms":       stats.ActiveRooms,
	})
}
