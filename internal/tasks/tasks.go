// Package tasks defines the asynq task types used for asynchronous
// persistence. Live collaboration commits to in-memory state and broadcasts
// first; these tasks trail behind and are retried by the queue on failure.
package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/inkboard/server/internal/domain"
)

const (
	TypeRoomSave     = "room:save"
	TypeUserSave     = "user:save"
	TypeChatAppend   = "chat:append"
	TypeReplayAppend = "replay:append"
)

type RoomSavePayload struct {
	Room *domain.Room `json:"room"`
}

func NewRoomSaveTask(room *domain.Room) (*asynq.Task, error) {
	payload, err := json.Marshal(RoomSavePayload{Room: room})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeRoomSave, payload), nil
}

type UserSavePayload struct {
	User *domain.User `json:"user"`
}

func NewUserSaveTask(user *domain.User) (*asynq.Task, error) {
	payload, err := json.Marshal(UserSavePayload{User: user})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeUserSave, payload), nil
}

type ChatAppendPayload struct {
	Message *domain.ChatMessage `json:"message"`
}

func NewChatAppendTask(msg *domain.ChatMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(ChatAppendPayload{Message: msg})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeChatAppend, payload), nil
}

type ReplayAppendPayload struct {
	RoomId string              `json:"roomId"`
	Ops    []domain.RecordedOp `json:"ops"`
}

func NewReplayAppendTask(roomId string, ops []domain.RecordedOp) (*asynq.Task, error) {
	payload, err := json.Marshal(ReplayAppendPayload{RoomId: roomId, Ops: ops})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeReplayAppend, payload), nil
}
