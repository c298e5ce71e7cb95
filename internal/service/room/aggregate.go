package room

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkboard/server/internal/domain"
)

// aggregate is the authoritative state of one room. Its mutex is the room's
// single serialization point: every mutation acquires it, so versions form a
// gap-free sequence and rooms never block each other.
type aggregate struct {
	mu        sync.Mutex
	room      domain.Room
	undo      *snapshotStack
	redo      *snapshotStack
	recording bool
	replaySeq int64
}

func newAggregate(rm domain.Room, undoDepth int) *aggregate {
	return &aggregate{
		room: rm,
		undo: newSnapshotStack(undoDepth),
		redo: newSnapshotStack(undoDepth),
	}
}

// memberLocked returns the live member entry or nil. Callers hold a.mu.
func (a *aggregate) memberLocked(userId string) *domain.Member {
	return a.room.Member(userId)
}

func (a *aggregate) requireRoleLocked(userId string, roles ...domain.Role) error {
	member := a.memberLocked(userId)
	if member == nil {
		return ErrNotMember
	}

	for _, role := range roles {
		if member.Role == role {
			return nil
		}
	}

	return ErrPermissionDenied
}

// snapshotLocked captures the pre-mutation board for the undo stack.
func (a *aggregate) snapshotLocked(description, userId string, now time.Time) {
	a.undo.push(domain.Snapshot{
		Board:       a.room.Board.Clone(),
		Description: description,
		TakenBy:     userId,
		TakenAt:     now,
	})
}

// commitLocked finishes a mutation: exactly one version increment plus the
// activity timestamps.
func (a *aggregate) commitLocked(now time.Time) {
	a.room.Board.Version++
	a.room.Board.LastModified = now
	a.room.LastActivity = now
}

// applyLocked routes a mutation payload into the board collections. The
// payload was validated by the caller.
func (a *aggregate) applyLocked(kind domain.MutationKind, element domain.Element, targetId string, template *domain.Template, now time.Time) error {
	board := &a.room.Board

	switch kind {
	case domain.MutationDrawEnd:
		board.Paths[element.Id()] = element
	case domain.MutationDrawShape:
		board.Shapes[element.Id()] = element
	case domain.MutationAddText:
		board.Texts[element.Id()] = element
	case domain.MutationAddMedia:
		board.Media[element.Id()] = element
	case domain.MutationAddSticker:
		board.Stickers[element.Id()] = element
	case domain.MutationRemoveMedia:
		delete(board.Media, targetId)
	case domain.MutationClearBoard:
		cleared := domain.NewBoardState(now)
		cleared.Version = board.Version
		a.room.Board = cleared
	case domain.MutationApplyTemplate:
		a.applyTemplateLocked(template)
	default:
		return ErrInvalidPayload
	}

	return nil
}

func (a *aggregate) applyTemplateLocked(template *domain.Template) {
	board := &a.room.Board

	for _, item := range template.Elements {
		element := domain.Element{"id": uuid.NewString()}
		for k, v := range item.Data {
			element[k] = v
		}
		element["position"] = item.Position
		if item.Size != nil {
			element["size"] = item.Size
		}

		switch item.Type {
		case "path":
			board.Paths[element.Id()] = element
		case "shape":
			board.Shapes[element.Id()] = element
		case "text":
			board.Texts[element.Id()] = element
		case "media":
			board.Media[element.Id()] = element
		case "sticker":
			board.Stickers[element.Id()] = element
		}
	}
}

// snapshotRoomLocked returns a copy safe to hand out after the lock drops.
func (a *aggregate) snapshotRoomLocked() domain.Room {
	rm := a.room
	rm.Members = append([]domain.Member(nil), a.room.Members...)
	rm.Board = a.room.Board.Clone()

	return rm
}
