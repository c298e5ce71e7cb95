package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/room"
)

// roomHash is the flat persisted form of a room. Nested structures travel as
// JSON strings inside the hash.
type roomHash struct {
	Name         string `redis:"name"`
	Description  string `redis:"description"`
	HostId       string `redis:"host_id"`
	IsActive     bool   `redis:"is_active"`
	CreatedAt    string `redis:"created_at"`
	LastActivity string `redis:"last_activity"`
	Members      string `redis:"members"`
	Board        string `redis:"board"`
	Settings     string `redis:"settings"`
}

func (r repo) SaveRoom(ctx context.Context, rm *domain.Room) error {
	r.logger.DebugContext(ctx, "called", "room_id", rm.Id)

	members, err := json.Marshal(rm.Members)
	if err != nil {
		return err
	}
	board, err := json.Marshal(rm.Board)
	if err != nil {
		return err
	}
	settings, err := json.Marshal(rm.Settings)
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()

	pipe.HSet(ctx, r.getRoomKey(rm.Id), roomHash{
		Name:         rm.Name,
		Description:  rm.Description,
		HostId:       rm.HostId,
		IsActive:     rm.IsActive,
		CreatedAt:    rm.CreatedAt.Format(time.RFC3339Nano),
		LastActivity: rm.LastActivity.Format(time.RFC3339Nano),
		Members:      string(members),
		Board:        string(board),
		Settings:     string(settings),
	})

	// the public directory only lists active public rooms
	if rm.IsActive && rm.Settings.IsPublic {
		pipe.ZAdd(ctx, r.getPublicRoomsKey(), redis.Z{
			Score:  float64(rm.LastActivity.UnixMilli()),
			Member: rm.Id,
		})
	} else {
		pipe.ZRem(ctx, r.getPublicRoomsKey(), rm.Id)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) FindRoomById(ctx context.Context, roomId string) (*domain.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)

	var hash roomHash
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Scan(&hash); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	if hash.Name == "" {
		return nil, room.ErrRoomNotFound
	}

	rm := domain.Room{
		Id:          roomId,
		Name:        hash.Name,
		Description: hash.Description,
		HostId:      hash.HostId,
		IsActive:    hash.IsActive,
	}

	rm.CreatedAt, _ = time.Parse(time.RFC3339Nano, hash.CreatedAt)
	rm.LastActivity, _ = time.Parse(time.RFC3339Nano, hash.LastActivity)

	if err := json.Unmarshal([]byte(hash.Members), &rm.Members); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(hash.Board), &rm.Board); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(hash.Settings), &rm.Settings); err != nil {
		return nil, err
	}

	return &rm, nil
}

func (r repo) ListPublicActiveRooms(ctx context.Context, limit int) ([]room.Listing, error) {
	r.logger.DebugContext(ctx, "called", "limit", limit)

	// most recently active first
	roomIds, err := r.rc.ZRevRange(ctx, r.getPublicRoomsKey(), 0, int64(limit)-1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	listings := make([]room.Listing, 0, len(roomIds))
	for _, roomId := range roomIds {
		rm, err := r.FindRoomById(ctx, roomId)
		if err != nil {
			// a room can expire between the zset read and the hash read
			continue
		}

		listing := room.Listing{
			Id:          rm.Id,
			Name:        rm.Name,
			MemberCount: len(rm.Members),
			MaxMembers:  rm.Settings.MaxMembers,
			HostId:      rm.HostId,
			Created:     rm.CreatedAt,
		}
		if host := rm.Member(rm.HostId); host != nil {
			listing.HostUsername = host.Username
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
