package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayer_SetPoseOnlyTouchesPose(t *testing.T) {
	p := NewPlayer("A", "alice", "#ff0000")
	p.SetPose(Pose{X: 1, Z: 2, ThetaY: 0.5})

	assert.Equal(t, Pose{X: 1, Z: 2, ThetaY: 0.5}, p.Pose())
	assert.Equal(t, "A", p.ID)
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, "#ff0000", p.Color)
}
