package room

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"

	"github.com/inkboard/server/internal/domain"
)

// presenceTTL is how long a cursor stays visible without updates.
const presenceTTL = 3 * time.Second

// presenceTracker holds ephemeral per-room cursor state. Expiry is lazy: any
// reader treats entries past the TTL as absent and evicts them; explicit
// purge on disconnect races safely with updates because everything runs
// under one lock.
type presenceTracker struct {
	rooms map[string]map[string]domain.Cursor
	now   func() time.Time
	mu    sync.Mutex
}

func newPresenceTracker() *presenceTracker {
	return &presenceTracker{
		rooms: make(map[string]map[string]domain.Cursor),
		now:   time.Now,
	}
}

func (p *presenceTracker) Update(roomId string, cursor domain.Cursor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursor.Timestamp = p.now()
	if p.rooms[roomId] == nil {
		p.rooms[roomId] = make(map[string]domain.Cursor)
	}
	p.rooms[roomId][cursor.UserId] = cursor
}

func (p *presenceTracker) List(roomId string) []domain.Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursors := p.rooms[roomId]
	now := p.now()
	for userId, cursor := range cursors {
		if now.Sub(cursor.Timestamp) > presenceTTL {
			delete(cursors, userId)
		}
	}

	return maps.Values(cursors)
}

func (p *presenceTracker) Purge(roomId, userId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.rooms[roomId], userId)
}

func (p *presenceTracker) Drop(roomId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.rooms, roomId)
}

type CursorMoveParams struct {
	ConnId   string
	RoomId   string
	Position domain.Position
	Tool     string
	Color    string
}

type CursorMoveResponse struct {
	Conns  []*websocket.Conn
	Cursor domain.Cursor
}

func (s service) CursorMove(ctx context.Context, params *CursorMoveParams) (CursorMoveResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return CursorMoveResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return CursorMoveResponse{}, err
	}

	a.mu.Lock()
	member := a.memberLocked(id.UserId)
	a.mu.Unlock()
	if member == nil {
		return CursorMoveResponse{}, ErrNotMember
	}

	cursor := domain.Cursor{
		UserId:   id.UserId,
		Username: id.Username,
		Position: params.Position,
		Tool:     params.Tool,
		Color:    params.Color,
	}
	s.presence.Update(params.RoomId, cursor)

	return CursorMoveResponse{
		Conns:  s.connRepo.GetRoomConns(params.RoomId, params.ConnId),
		Cursor: cursor,
	}, nil
}

// PresenceEntry pairs a live cursor with its derived status. The status is
// recomputed on every read and never stored.
type PresenceEntry struct {
	domain.Cursor
	Status domain.PresenceStatus `json:"status"`
}

func (s service) Presence(roomId string) []PresenceEntry {
	cursors := s.presence.List(roomId)
	now := time.Now()

	entries := make([]PresenceEntry, 0, len(cursors))
	for _, cursor := range cursors {
		entries = append(entries, PresenceEntry{
			Cursor: cursor,
			Status: cursor.StatusAt(now),
		})
	}

	return entries
}
