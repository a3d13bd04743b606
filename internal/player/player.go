package player

// Pose is the mutable part of a Player: ground-plane position and yaw in radians.
type Pose struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	ThetaY float64 `json:"thetaY"`
}

// Player represents one occupant of a room. ID is the only stable identity;
// Name and Color never change while the player is in a room.
type Player struct {
	ID     string  `json:"id" validate:"required"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	ThetaY float64 `json:"thetaY"`
}

// NewPlayer creates a player at the origin.
func NewPlayer(id, name, color string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Color: color,
	}
}

// Pose returns the player's current pose.
func (p *Player) Pose() Pose {
	return Pose{X: p.X, Z: p.Z, ThetaY: p.ThetaY}
}

// SetPose overwrites the player's position and yaw.
func (p *Player) SetPose(pose Pose) {
	p.X = pose.X
	p.Z = pose.Z
	p.ThetaY = pose.ThetaY
}
