package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/repository/connection"
)

type connState struct {
	conn     *websocket.Conn
	identity *connection.Identity
	rooms    map[string]struct{}
}

// repo is the connection registry: transport session -> verified identity
// plus the room-subscription index that powers fanout.
type repo struct {
	conns map[string]*connState
	rooms map[string]map[string]struct{}
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[string]*connState),
		rooms: make(map[string]map[string]struct{}),
	}
}

func (r *repo) Add(connId string, conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connId]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[connId] = &connState{
		conn:  conn,
		rooms: make(map[string]struct{}),
	}

	return nil
}

// Register attaches a verified identity to a live connection. Room operations
// on a connection without one fail with ErrNotAuthenticated.
func (r *repo) Register(connId string, identity connection.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connId]
	if !ok {
		return connection.ErrNotFound
	}

	state.identity = &identity

	return nil
}

func (r *repo) GetIdentity(connId string) (connection.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.conns[connId]
	if !ok {
		return connection.Identity{}, connection.ErrNotFound
	}
	if state.identity == nil {
		return connection.Identity{}, connection.ErrNotAuthenticated
	}

	return *state.identity, nil
}

func (r *repo) GetConn(connId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.conns[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return state.conn, nil
}

func (r *repo) Subscribe(connId, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connId]
	if !ok {
		return connection.ErrNotFound
	}

	state.rooms[roomId] = struct{}{}
	if r.rooms[roomId] == nil {
		r.rooms[roomId] = make(map[string]struct{})
	}
	r.rooms[roomId][connId] = struct{}{}

	return nil
}

func (r *repo) Unsubscribe(connId, roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.conns[connId]; ok {
		delete(state.rooms, roomId)
	}
	r.dropSubscriptionLocked(connId, roomId)
}

// GetRoomConns returns the connections subscribed to a room, excluding
// excludeConnId when non-empty.
func (r *repo) GetRoomConns(roomId, excludeConnId string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.rooms[roomId]))
	for connId := range r.rooms[roomId] {
		if connId == excludeConnId {
			continue
		}
		if state, ok := r.conns[connId]; ok {
			conns = append(conns, state.conn)
		}
	}

	return conns
}

// Remove deletes the connection and all its subscriptions. It is idempotent
// and returns the identity and subscribed room ids so the caller can run the
// disconnect cascade scoped to exactly those rooms.
func (r *repo) Remove(connId string) (connection.Identity, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connId]
	if !ok {
		return connection.Identity{}, nil
	}

	roomIds := make([]string, 0, len(state.rooms))
	for roomId := range state.rooms {
		roomIds = append(roomIds, roomId)
		r.dropSubscriptionLocked(connId, roomId)
	}
	delete(r.conns, connId)

	var identity connection.Identity
	if state.identity != nil {
		identity = *state.identity
	}

	return identity, roomIds
}

func (r *repo) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

func (r *repo) dropSubscriptionLocked(connId, roomId string) {
	if subs, ok := r.rooms[roomId]; ok {
		delete(subs, connId)
		if len(subs) == 0 {
			delete(r.rooms, roomId)
		}
	}
}
