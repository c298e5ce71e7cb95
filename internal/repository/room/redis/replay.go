package redis

import (
	"context"
	"encoding/json"

	"github.com/inkboard/server/internal/domain"
)

func (r repo) AppendReplayOps(ctx context.Context, roomId string, ops []domain.RecordedOp) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId, "ops", len(ops))

	if len(ops) == 0 {
		return nil
	}

	values := make([]any, 0, len(ops))
	for _, op := range ops {
		data, err := json.Marshal(op)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	if err := r.rc.RPush(ctx, r.getReplayKey(roomId), values...).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetReplay(ctx context.Context, roomId string) ([]domain.RecordedOp, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)

	raw, err := r.rc.LRange(ctx, r.getReplayKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	ops := make([]domain.RecordedOp, 0, len(raw))
	for _, item := range raw {
		var op domain.RecordedOp
		if err := json.Unmarshal([]byte(item), &op); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}
