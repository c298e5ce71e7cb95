package redis

import (
	"context"
	"encoding/json"

	"github.com/inkboard/server/internal/domain"
)

func (r repo) AppendChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	r.logger.DebugContext(ctx, "called", "room_id", msg.RoomId, "message_id", msg.Id)

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	key := r.getChatKey(msg.RoomId)
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, chatKeep-1)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// GetChatHistory returns up to limit most recent messages in chronological
// order.
func (r repo) GetChatHistory(ctx context.Context, roomId string, limit int) ([]domain.ChatMessage, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId, "limit", limit)

	raw, err := r.rc.LRange(ctx, r.getChatKey(roomId), 0, int64(limit)-1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	// stored newest-first, replayed oldest-first
	messages := make([]domain.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
