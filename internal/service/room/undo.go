package room

import "github.com/inkboard/server/internal/domain"

// snapshotStack is a bounded deque used as a stack: LIFO access with silent
// FIFO eviction of the oldest snapshot once capacity is reached. It is
// guarded by the owning aggregate's mutex.
type snapshotStack struct {
	items    []domain.Snapshot
	capacity int
}

func newSnapshotStack(capacity int) *snapshotStack {
	return &snapshotStack{capacity: capacity}
}

func (s *snapshotStack) push(snap domain.Snapshot) {
	if len(s.items) >= s.capacity {
		s.items = s.items[1:]
	}
	s.items = append(s.items, snap)
}

func (s *snapshotStack) pop() (domain.Snapshot, bool) {
	if len(s.items) == 0 {
		return domain.Snapshot{}, false
	}

	snap := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]

	return snap, true
}

func (s *snapshotStack) len() int {
	return len(s.items)
}

func (s *snapshotStack) clear() {
	s.items = s.items[:0]
}
