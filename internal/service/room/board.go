package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
)

type ApplyMutationParams struct {
	ConnId string
	RoomId string
	Kind   domain.MutationKind
	// Element carries the payload for element kinds, TargetId for
	// remove-media, Template for apply-template.
	Element  domain.Element
	TargetId string
	Template *domain.Template
}

type ApplyMutationResponse struct {
	// Conns excludes the originator; AllConns includes it for events the
	// whole room must see (board-cleared, board-state).
	Conns    []*websocket.Conn
	AllConns []*websocket.Conn
	// Element is the applied payload annotated with the acting user.
	Element domain.Element
	// Board is set for mutations whose result is only expressible as full
	// state (apply-template).
	Board   *domain.BoardState
	Version int64
}

// ApplyMutation is the single write path for board content. Failures never
// mutate state; successes increment the version by exactly one.
func (s service) ApplyMutation(ctx context.Context, params *ApplyMutationParams) (ApplyMutationResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return ApplyMutationResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return ApplyMutationResponse{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.memberLocked(id.UserId) == nil {
		return ApplyMutationResponse{}, ErrNotMember
	}

	if params.Kind.Privileged() {
		if err := a.requireRoleLocked(id.UserId, domain.RoleHost, domain.RoleModerator); err != nil {
			return ApplyMutationResponse{}, err
		}
	}

	element := params.Element
	switch params.Kind {
	case domain.MutationDrawEnd, domain.MutationDrawShape, domain.MutationAddText,
		domain.MutationAddMedia, domain.MutationAddSticker:
		if element.Id() == "" {
			return ApplyMutationResponse{}, ErrInvalidPayload
		}
		if params.Kind == domain.MutationAddMedia && !a.room.Settings.AllowMediaEmbed {
			return ApplyMutationResponse{}, ErrPermissionDenied
		}
		// annotate with the acting user before it lands on the board
		element = cloneElement(element)
		element["userId"] = id.UserId
		element["username"] = id.Username
	case domain.MutationRemoveMedia:
		if params.TargetId == "" {
			return ApplyMutationResponse{}, ErrInvalidPayload
		}
		// an absent target must not produce a snapshot or a version bump
		if _, ok := a.room.Board.Media[params.TargetId]; !ok {
			return ApplyMutationResponse{}, ErrInvalidPayload
		}
	case domain.MutationApplyTemplate:
		if params.Template == nil || len(params.Template.Elements) == 0 {
			return ApplyMutationResponse{}, ErrInvalidPayload
		}
	case domain.MutationClearBoard:
	default:
		return ApplyMutationResponse{}, ErrInvalidPayload
	}

	now := time.Now()

	if params.Kind.Destructive() {
		a.snapshotLocked(string(params.Kind), id.UserId, now)
		// a new destructive mutation invalidates the redo branch
		a.redo.clear()
	}

	if err := a.applyLocked(params.Kind, element, params.TargetId, params.Template, now); err != nil {
		return ApplyMutationResponse{}, err
	}
	a.commitLocked(now)

	if member := a.memberLocked(id.UserId); member != nil {
		member.LastActive = now
	}

	s.recordLocked(ctx, a, string(params.Kind), id.UserId, id.Username, element)
	s.persistRoom(ctx, &a.room)

	resp := ApplyMutationResponse{
		Conns:    s.connRepo.GetRoomConns(params.RoomId, params.ConnId),
		AllConns: s.connRepo.GetRoomConns(params.RoomId, ""),
		Element:  element,
		Version:  a.room.Board.Version,
	}
	if params.Kind == domain.MutationApplyTemplate {
		board := a.room.Board.Clone()
		resp.Board = &board
	}

	return resp, nil
}

func cloneElement(e domain.Element) domain.Element {
	c := make(domain.Element, len(e)+2)
	for k, v := range e {
		c[k] = v
	}

	return c
}

type UndoParams struct {
	ConnId string
	RoomId string
}

type UndoResponse struct {
	Conns []*websocket.Conn
	Board *domain.BoardState
	// Nothing reports an empty stack; version is untouched in that case.
	Nothing bool
	Version int64
}

// Undo restores the board captured before the most recent destructive
// mutation. The restore itself is a counted mutation, so the version keeps
// climbing, and the result goes out as full board state because it is not
// expressible as a delta.
func (s service) Undo(ctx context.Context, params *UndoParams) (UndoResponse, error) {
	return s.restore(ctx, params.ConnId, params.RoomId, "undo")
}

type RedoParams = UndoParams

type RedoResponse = UndoResponse

func (s service) Redo(ctx context.Context, params *RedoParams) (RedoResponse, error) {
	return s.restore(ctx, params.ConnId, params.RoomId, "redo")
}

func (s service) restore(ctx context.Context, connId, roomId, direction string) (UndoResponse, error) {
	id, err := s.identity(connId)
	if err != nil {
		return UndoResponse{}, err
	}

	a, err := s.getAggregate(ctx, roomId)
	if err != nil {
		return UndoResponse{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.memberLocked(id.UserId) == nil {
		return UndoResponse{}, ErrNotMember
	}

	from, to := a.undo, a.redo
	if direction == "redo" {
		from, to = a.redo, a.undo
	}

	snap, ok := from.pop()
	if !ok {
		return UndoResponse{Nothing: true, Version: a.room.Board.Version}, nil
	}

	now := time.Now()

	// the current board becomes the counterpart snapshot so the two stacks
	// stay symmetric
	to.push(domain.Snapshot{
		Board:       a.room.Board.Clone(),
		Description: direction,
		TakenBy:     id.UserId,
		TakenAt:     now,
	})

	restored := snap.Board.Clone()
	restored.Version = a.room.Board.Version
	a.room.Board = restored
	a.commitLocked(now)

	s.recordLocked(ctx, a, direction, id.UserId, id.Username, nil)
	s.persistRoom(ctx, &a.room)

	board := a.room.Board.Clone()

	return UndoResponse{
		Conns:   s.connRepo.GetRoomConns(roomId, ""),
		Board:   &board,
		Version: board.Version,
	}, nil
}

type RelayParams struct {
	ConnId  string
	RoomId  string
	Payload map[string]any
}

type RelayResponse struct {
	Conns   []*websocket.Conn
	Payload map[string]any
}

// Relay forwards transient drawing events (draw-start, draw-move) to the
// rest of the room without touching board state or the version counter.
func (s service) Relay(ctx context.Context, params *RelayParams) (RelayResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return RelayResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return RelayResponse{}, err
	}

	a.mu.Lock()
	member := a.memberLocked(id.UserId)
	a.mu.Unlock()
	if member == nil {
		return RelayResponse{}, ErrNotMember
	}

	payload := make(map[string]any, len(params.Payload)+2)
	for k, v := range params.Payload {
		payload[k] = v
	}
	payload["userId"] = id.UserId
	payload["username"] = id.Username

	return RelayResponse{
		Conns:   s.connRepo.GetRoomConns(params.RoomId, params.ConnId),
		Payload: payload,
	}, nil
}
