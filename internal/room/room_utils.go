package room

import (
	"letna/metaverse/internal/player"
)

// AddPlayer appends p unless a player with the same ID is already present.
// It reports whether p was added.
func (r *Room) AddPlayer(p *player.Player) bool {
	if r.FindPlayer(p.ID) != nil {
		return false
	}
	r.Players = append(r.Players, p)
	return true
}

// RemovePlayer removes the player with the given ID, keeping the order of the
// remaining players. It reports whether a player was removed.
func (r *Room) RemovePlayer(id string) bool {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// FindPlayer returns the player with the given ID, or nil.
func (r *Room) FindPlayer(id string) *player.Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// MovePlayer overwrites the pose of the player with the given ID in place.
// It returns the updated player, or nil if the ID is unknown.
func (r *Room) MovePlayer(id string, pose player.Pose) *player.Player {
	p := r.FindPlayer(id)
	if p == nil {
		return nil
	}
	p.SetPose(pose)
	return p
}

// PlayerIDs returns the IDs of all players in room order.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}
