package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const chatKeep = 500

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getPublicRoomsKey() string {
	return "rooms:public"
}

func (r repo) getChatKey(roomId string) string {
	return "room:" + roomId + ":chat"
}

func (r repo) getReplayKey(roomId string) string {
	return "room:" + roomId + ":replay"
}

func (r repo) getUserKey(userId string) string {
	return "user:" + userId
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
