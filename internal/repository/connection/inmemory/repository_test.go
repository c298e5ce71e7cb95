package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkboard/server/internal/repository/connection"
)

func TestAddAndRegister(t *testing.T) {
	r := NewRepo()

	require.NoError(t, r.Add("conn1", &websocket.Conn{}))
	assert.ErrorIs(t, r.Add("conn1", &websocket.Conn{}), connection.ErrAlreadyExists)

	// unauthenticated connections have no identity
	_, err := r.GetIdentity("conn1")
	assert.ErrorIs(t, err, connection.ErrNotAuthenticated)

	require.NoError(t, r.Register("conn1", connection.Identity{UserId: "user1", Username: "alice"}))
	id, err := r.GetIdentity("conn1")
	require.NoError(t, err)
	assert.Equal(t, "user1", id.UserId)

	assert.ErrorIs(t, r.Register("ghost", connection.Identity{}), connection.ErrNotFound)
	_, err = r.GetIdentity("ghost")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestSubscriptions(t *testing.T) {
	r := NewRepo()

	require.NoError(t, r.Add("conn1", &websocket.Conn{}))
	require.NoError(t, r.Add("conn2", &websocket.Conn{}))

	require.NoError(t, r.Subscribe("conn1", "room1"))
	require.NoError(t, r.Subscribe("conn2", "room1"))
	assert.ErrorIs(t, r.Subscribe("ghost", "room1"), connection.ErrNotFound)

	assert.Len(t, r.GetRoomConns("room1", ""), 2)
	assert.Len(t, r.GetRoomConns("room1", "conn1"), 1)
	assert.Empty(t, r.GetRoomConns("room2", ""))

	r.Unsubscribe("conn1", "room1")
	assert.Len(t, r.GetRoomConns("room1", ""), 1)
}

func TestRemove(t *testing.T) {
	r := NewRepo()

	require.NoError(t, r.Add("conn1", &websocket.Conn{}))
	require.NoError(t, r.Register("conn1", connection.Identity{UserId: "user1", Username: "alice"}))
	require.NoError(t, r.Subscribe("conn1", "room1"))
	require.NoError(t, r.Subscribe("conn1", "room2"))

	id, roomIds := r.Remove("conn1")
	assert.Equal(t, "user1", id.UserId)
	assert.ElementsMatch(t, []string{"room1", "room2"}, roomIds)
	assert.Empty(t, r.GetRoomConns("room1", ""))
	assert.Equal(t, 0, r.ConnCount())

	// removing again is a no-op
	id, roomIds = r.Remove("conn1")
	assert.Empty(t, id.UserId)
	assert.Nil(t, roomIds)
}
