package redis

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkboard/server/internal/domain"
	"github.com/inkboard/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	return NewRepo(rc, slog.Default())
}

func testRoom(id string) *domain.Room {
	now := time.Now().Truncate(time.Millisecond)

	return &domain.Room{
		Id:          id,
		Name:        "test room",
		Description: "a room",
		HostId:      "user1",
		Members: []domain.Member{{
			Id:         "user1",
			Username:   "alice",
			Role:       domain.RoleHost,
			JoinedAt:   now,
			LastActive: now,
		}},
		Board:        domain.NewBoardState(now),
		Settings:     domain.DefaultSettings(),
		IsActive:     true,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestSaveAndFindRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	rm := testRoom("room1")
	rm.Board.Paths["p1"] = domain.Element{"id": "p1", "color": "#000"}
	rm.Board.Version = 7
	require.NoError(t, r.SaveRoom(ctx, rm))

	found, err := r.FindRoomById(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, rm.Name, found.Name)
	assert.Equal(t, rm.HostId, found.HostId)
	assert.True(t, found.IsActive)
	assert.Equal(t, int64(7), found.Board.Version)
	require.Len(t, found.Members, 1)
	assert.Equal(t, domain.RoleHost, found.Members[0].Role)
	require.Contains(t, found.Board.Paths, "p1")
	assert.Equal(t, "p1", found.Board.Paths["p1"].Id())
}

func TestFindRoomNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.FindRoomById(context.Background(), "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestListPublicActiveRooms(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	older := testRoom("older")
	older.LastActivity = time.Now().Add(-time.Hour)
	require.NoError(t, r.SaveRoom(ctx, older))

	newer := testRoom("newer")
	require.NoError(t, r.SaveRoom(ctx, newer))

	private := testRoom("private")
	private.Settings.IsPublic = false
	require.NoError(t, r.SaveRoom(ctx, private))

	inactive := testRoom("inactive")
	inactive.IsActive = false
	require.NoError(t, r.SaveRoom(ctx, inactive))

	listings, err := r.ListPublicActiveRooms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listings, 2, "private and inactive rooms stay out of the directory")
	assert.Equal(t, "newer", listings[0].Id, "most recently active first")
	assert.Equal(t, "older", listings[1].Id)
	assert.Equal(t, "alice", listings[0].HostUsername)
	assert.Equal(t, 1, listings[0].MemberCount)
}

func TestRoomLeavesDirectoryWhenDeactivated(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	rm := testRoom("room1")
	require.NoError(t, r.SaveRoom(ctx, rm))

	rm.IsActive = false
	require.NoError(t, r.SaveRoom(ctx, rm))

	listings, err := r.ListPublicActiveRooms(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestChatHistory(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.AppendChatMessage(ctx, &domain.ChatMessage{
			Id:      fmt.Sprintf("m%d", i),
			RoomId:  "room1",
			Message: fmt.Sprintf("message %d", i),
			Type:    domain.MessageTypeUser,
		}))
	}

	history, err := r.GetChatHistory(ctx, "room1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// chronological order, limited to the most recent
	assert.Equal(t, "message 2", history[0].Message)
	assert.Equal(t, "message 4", history[2].Message)
}

func TestReplayRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	ops := []domain.RecordedOp{
		{Seq: 1, Kind: "draw-end", UserId: "user1", Username: "alice"},
		{Seq: 2, Kind: "clear-board", UserId: "user1", Username: "alice"},
	}
	require.NoError(t, r.AppendReplayOps(ctx, "room1", ops))
	require.NoError(t, r.AppendReplayOps(ctx, "room1", nil))

	got, err := r.GetReplay(ctx, "room1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, "clear-board", got[1].Kind)
}

func TestSaveAndFindUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user := domain.User{Id: "user1", Username: "alice", LastActive: time.Now()}
	require.NoError(t, r.SaveUser(ctx, &user))

	found, err := r.FindUserById(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = r.FindUserById(ctx, "ghost")
	assert.ErrorIs(t, err, room.ErrUserNotFound)
}
