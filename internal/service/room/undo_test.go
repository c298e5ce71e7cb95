package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkboard/server/internal/domain"
)

func TestSnapshotStackLIFO(t *testing.T) {
	s := newSnapshotStack(5)

	s.push(domain.Snapshot{Description: "first"})
	s.push(domain.Snapshot{Description: "second"})

	snap, ok := s.pop()
	require.True(t, ok)
	assert.Equal(t, "second", snap.Description)

	snap, ok = s.pop()
	require.True(t, ok)
	assert.Equal(t, "first", snap.Description)

	_, ok = s.pop()
	assert.False(t, ok)
}

func TestSnapshotStackEvictsOldest(t *testing.T) {
	s := newSnapshotStack(3)

	for i := 0; i < 5; i++ {
		s.push(domain.Snapshot{Description: fmt.Sprintf("snap%d", i)})
	}
	assert.Equal(t, 3, s.len())

	// the two oldest were silently dropped
	for _, want := range []string{"snap4", "snap3", "snap2"} {
		snap, ok := s.pop()
		require.True(t, ok)
		assert.Equal(t, want, snap.Description)
	}

	_, ok := s.pop()
	assert.False(t, ok)
}

func TestSnapshotStackClear(t *testing.T) {
	s := newSnapshotStack(3)
	s.push(domain.Snapshot{Description: "gone"})
	s.clear()

	assert.Equal(t, 0, s.len())
	_, ok := s.pop()
	assert.False(t, ok)
}
