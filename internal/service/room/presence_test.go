package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkboard/server/internal/domain"
)

func TestPresenceTrackerExpiry(t *testing.T) {
	now := time.Now()
	p := newPresenceTracker()
	p.now = func() time.Time { return now }

	p.Update("room1", domain.Cursor{UserId: "user1", Username: "alice"})
	p.Update("room1", domain.Cursor{UserId: "user2", Username: "bob"})

	assert.Len(t, p.List("room1"), 2)

	// user1 refreshes, user2 goes stale
	now = now.Add(2 * time.Second)
	p.Update("room1", domain.Cursor{UserId: "user1", Username: "alice"})

	now = now.Add(2 * time.Second)
	cursors := p.List("room1")
	require.Len(t, cursors, 1)
	assert.Equal(t, "user1", cursors[0].UserId)

	// past the TTL everything is gone
	now = now.Add(presenceTTL + time.Millisecond)
	assert.Empty(t, p.List("room1"))
}

func TestPresenceTrackerPurge(t *testing.T) {
	p := newPresenceTracker()

	p.Update("room1", domain.Cursor{UserId: "user1"})
	p.Update("room1", domain.Cursor{UserId: "user2"})

	p.Purge("room1", "user1")
	cursors := p.List("room1")
	require.Len(t, cursors, 1)
	assert.Equal(t, "user2", cursors[0].UserId)

	p.Drop("room1")
	assert.Empty(t, p.List("room1"))
}

func TestCursorStatusAt(t *testing.T) {
	now := time.Now()
	cursor := domain.Cursor{Timestamp: now}

	assert.Equal(t, domain.PresenceActive, cursor.StatusAt(now))
	assert.Equal(t, domain.PresenceActive, cursor.StatusAt(now.Add(time.Second)))
	assert.Equal(t, domain.PresenceIdle, cursor.StatusAt(now.Add(1500*time.Millisecond)))
	assert.Equal(t, domain.PresenceAway, cursor.StatusAt(now.Add(3*time.Second)))
}
