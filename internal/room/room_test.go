package room

import (
	"testing"

	"letna/metaverse/internal/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom_DeduplicatesSnapshot(t *testing.T) {
	r := NewRoom("r1", "secret", []player.Player{
		{ID: "A", Name: "alice"},
		{ID: "B", Name: "bob"},
		{ID: "A", Name: "impostor"},
	})

	assert.Equal(t, []string{"A", "B"}, r.PlayerIDs())
	assert.Equal(t, "alice", r.FindPlayer("A").Name)
	assert.Equal(t, "secret", r.Password)
}

func TestRoom_AddPlayerIsIdempotent(t *testing.T) {
	r := NewRoom("r1", "", nil)

	assert.True(t, r.AddPlayer(&player.Player{ID: "B"}))
	assert.False(t, r.AddPlayer(&player.Player{ID: "B"}))
	assert.Len(t, r.Players, 1)
}

func TestRoom_RemovePlayer(t *testing.T) {
	tests := []struct {
		name    string
		remove  string
		want    []string
		removed bool
	}{
		{name: "middle keeps order", remove: "B", want: []string{"A", "C"}, removed: true},
		{name: "first", remove: "A", want: []string{"B", "C"}, removed: true},
		{name: "unknown is a no-op", remove: "Z", want: []string{"A", "B", "C"}, removed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRoom("r1", "", []player.Player{{ID: "A"}, {ID: "B"}, {ID: "C"}})
			assert.Equal(t, tt.removed, r.RemovePlayer(tt.remove))
			assert.Equal(t, tt.want, r.PlayerIDs())
		})
	}
}

func TestRoom_MovePlayer(t *testing.T) {
	r := NewRoom("r1", "", []player.Player{{ID: "A", Name: "alice", Color: "red"}})

	moved := r.MovePlayer("A", player.Pose{X: 5, Z: 2, ThetaY: 1.2})
	require.NotNil(t, moved)
	assert.Equal(t, player.Pose{X: 5, Z: 2, ThetaY: 1.2}, r.FindPlayer("A").Pose())
	assert.Equal(t, "alice", moved.Name)

	assert.Nil(t, r.MovePlayer("ghost", player.Pose{X: 1}))
}
