package room

import (
	"letna/metaverse/internal/player"
)

// Room is the local mirror of a named multiplayer room. Players is ordered by
// arrival and unique by ID.
type Room struct {
	ID       string           `json:"id"`
	Password string           `json:"password"`
	Players  []*player.Player `json:"players"`
}

// NewRoom creates a room from a server snapshot. Later duplicates of an ID are
// discarded so the uniqueness invariant holds even if the snapshot violates it.
func NewRoom(id, password string, players []player.Player) *Room {
	r := &Room{
		ID:       id,
		Password: password,
		Players:  make([]*player.Player, 0, len(players)),
	}
	for i := range players {
		p := players[i]
		r.AddPlayer(&p)
	}
	return r
}
