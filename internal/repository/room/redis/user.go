package redis

import (
	"context"
	"time"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/room"
)

type userHash struct {
	Username   string `redis:"username"`
	LastActive string `redis:"last_active"`
}

func (r repo) SaveUser(ctx context.Context, user *domain.User) error {
	r.logger.DebugContext(ctx, "called", "user_id", user.Id)

	if err := r.rc.HSet(ctx, r.getUserKey(user.Id), userHash{
		Username:   user.Username,
		LastActive: user.LastActive.Format(time.RFC3339Nano),
	}).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) FindUserById(ctx context.Context, userId string) (domain.User, error) {
	r.logger.DebugContext(ctx, "called", "user_id", userId)

	var hash userHash
	if err := r.rc.HGetAll(ctx, r.getUserKey(userId)).Scan(&hash); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return domain.User{}, err
	}

	if hash.Username == "" {
		return domain.User{}, room.ErrUserNotFound
	}

	user := domain.User{
		Id:       userId,
		Username: hash.Username,
	}
	user.LastActive, _ = time.Parse(time.RFC3339Nano, hash.LastActive)

	return user, nil
}
