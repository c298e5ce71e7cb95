package room

import (
	"context"
	"sync"
)

// directory owns the room-id -> aggregate map. Inserts are atomic so two
// near-simultaneous creators can never collide on an id, and lookups of rooms
// evicted from memory rehydrate from the durable store.
type directory struct {
	rooms map[string]*aggregate
	mu    sync.RWMutex
}

func newDirectory() *directory {
	return &directory{rooms: make(map[string]*aggregate)}
}

// insert claims an id. It reports false when the id is already taken.
func (d *directory) insert(roomId string, a *aggregate) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[roomId]; ok {
		return false
	}
	d.rooms[roomId] = a

	return true
}

// getOrInsert resolves the race between two rehydrators of the same room:
// exactly one aggregate survives.
func (d *directory) getOrInsert(roomId string, a *aggregate) *aggregate {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.rooms[roomId]; ok {
		return existing
	}
	d.rooms[roomId] = a

	return a
}

func (d *directory) get(roomId string) (*aggregate, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.rooms[roomId]

	return a, ok
}

func (d *directory) remove(roomId string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.rooms, roomId)
}

func (d *directory) count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}

// getAggregate locates a live aggregate, falling back to the durable store.
// In-memory state is a cache of the store; an active persisted room becomes
// servable again after a restart through this path. Inactive rooms are gone
// for good.
func (s service) getAggregate(ctx context.Context, roomId string) (*aggregate, error) {
	if a, ok := s.directory.get(roomId); ok {
		return a, nil
	}

	rm, err := s.roomRepo.FindRoomById(ctx, roomId)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !rm.IsActive {
		return nil, ErrRoomNotFound
	}

	return s.directory.getOrInsert(roomId, newAggregate(*rm, s.undoDepth)), nil
}
