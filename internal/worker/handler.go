package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/tasks"
)

type iRoomRepo interface {
	SaveRoom(ctx context.Context, rm *domain.Room) error
	SaveUser(ctx context.Context, user *domain.User) error
	AppendChatMessage(ctx context.Context, msg *domain.ChatMessage) error
	AppendReplayOps(ctx context.Context, roomId string, ops []domain.RecordedOp) error
}

// Handler executes persistence tasks. Any returned error makes asynq retry
// the task, which is the reconciliation pass for transient store outages.
type Handler struct {
	roomRepo iRoomRepo
	logger   *slog.Logger
}

func NewHandler(roomRepo iRoomRepo, logger *slog.Logger) *Handler {
	return &Handler{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeRoomSave, h.HandleRoomSave)
	mux.HandleFunc(tasks.TypeUserSave, h.HandleUserSave)
	mux.HandleFunc(tasks.TypeChatAppend, h.HandleChatAppend)
	mux.HandleFunc(tasks.TypeReplayAppend, h.HandleReplayAppend)
}

func (h *Handler) HandleRoomSave(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RoomSavePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal room save payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.roomRepo.SaveRoom(ctx, payload.Room); err != nil {
		h.logger.WarnContext(ctx, "room save failed, will retry", "room_id", payload.Room.Id, "error", err)
		return err
	}

	return nil
}

func (h *Handler) HandleUserSave(ctx context.Context, t *asynq.Task) error {
	var payload tasks.UserSavePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal user save payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.roomRepo.SaveUser(ctx, payload.User); err != nil {
		h.logger.WarnContext(ctx, "user save failed, will retry", "user_id", payload.User.Id, "error", err)
		return err
	}

	return nil
}

func (h *Handler) HandleChatAppend(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ChatAppendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal chat append payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.roomRepo.AppendChatMessage(ctx, payload.Message); err != nil {
		h.logger.WarnContext(ctx, "chat append failed, will retry", "room_id", payload.Message.RoomId, "error", err)
		return err
	}

	return nil
}

func (h *Handler) HandleReplayAppend(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ReplayAppendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal replay append payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.roomRepo.AppendReplayOps(ctx, payload.RoomId, payload.Ops); err != nil {
		h.logger.WarnContext(ctx, "replay append failed, will retry", "room_id", payload.RoomId, "error", err)
		return err
	}

	return nil
}
