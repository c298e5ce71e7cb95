package room

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inkboard/server/internal/domain"
)

type SendChatMessageParams struct {
	ConnId      string
	RoomId      string
	Message     string
	Attachments []string
	ReplyTo     string
}

type SendChatMessageResponse struct {
	// chat goes to everyone including the sender, which doubles as the
	// sender's delivery confirmation
	Conns   []*websocket.Conn
	Message domain.ChatMessage
}

func (s service) SendChatMessage(ctx context.Context, params *SendChatMessageParams) (SendChatMessageResponse, error) {
	id, err := s.identity(params.ConnId)
	if err != nil {
		return SendChatMessageResponse{}, err
	}

	a, err := s.getAggregate(ctx, params.RoomId)
	if err != nil {
		return SendChatMessageResponse{}, err
	}

	if strings.TrimSpace(params.Message) == "" {
		return SendChatMessageResponse{}, ErrEmptyMessage
	}

	now := time.Now()

	a.mu.Lock()
	if a.memberLocked(id.UserId) == nil {
		a.mu.Unlock()
		return SendChatMessageResponse{}, ErrNotMember
	}
	if !a.room.Settings.AllowChat {
		a.mu.Unlock()
		return SendChatMessageResponse{}, ErrPermissionDenied
	}
	a.room.LastActivity = now
	s.persistRoom(ctx, &a.room)
	a.mu.Unlock()

	msg := domain.ChatMessage{
		Id:          uuid.NewString(),
		RoomId:      params.RoomId,
		UserId:      id.UserId,
		Username:    id.Username,
		Message:     params.Message,
		Type:        domain.MessageTypeUser,
		Attachments: params.Attachments,
		ReplyTo:     params.ReplyTo,
		Timestamp:   now,
	}
	s.persistChatMessage(ctx, &msg)

	return SendChatMessageResponse{
		Conns:   s.connRepo.GetRoomConns(params.RoomId, ""),
		Message: msg,
	}, nil
}
