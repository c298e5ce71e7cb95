package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
)

// recordLocked appends one applied operation to the room's replay log when
// recording is on. Callers hold a.mu, so the sequence numbers mirror the
// room's total mutation order.
func (s service) recordLocked(ctx context.Context, a *aggregate, kind, userId, username string, payload any) {
	if !a.recording {
		return
	}

	a.replaySeq++
	op := domain.RecordedOp{
		Seq:      a.replaySeq,
		Kind:     kind,
		UserId:   userId,
		Username: username,
		Payload:  payload,
		At:       time.Now(),
	}
	s.persistReplayOps(ctx, a.room.Id, []domain.RecordedOp{op})
}

type RecordingParams struct {
	ConnId string
	RoomId string
}

type RecordingResponse struct {
	Conns     []*websocket.Conn
	Recording bool
}

func (s service) StartRecording(ctx context.Context, params *RecordingParams) (RecordingResponse, error) {
	return s.setRecording(ctx, params, true)
}

func (s service) StopRecording(ctx context.Context, params *RecordingParams) (RecordingResponse, error) {
	return s.setRecording(ctx, params, false)
}

func (s service) setRecording(ctx context.Context, params *RecordingParams, on bool) (RecordingResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return RecordingResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return RecordingResponse{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireRoleLocked(id.UserId, domain.RoleHost, domain.RoleModerator); err != nil {
		return RecordingResponse{}, err
	}
	if !a.room.Settings.RecordSession {
		return RecordingResponse{}, ErrRecordingDisabled
	}

	a.recording = on

	return RecordingResponse{
		Conns:     s.connRepo.GetRoomConns(params.RoomId, ""),
		Recording: on,
	}, nil
}

func (s service) GetReplay(ctx context.Context, roomId string) ([]domain.RecordedOp, error) {
	ops, err := s.roomRepo.GetReplay(ctx, roomId)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load replay", "room_id", roomId, "error", err)
		return nil, err
	}

	return ops, nil
}
