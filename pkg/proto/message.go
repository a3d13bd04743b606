package proto

import (
	"encoding/json"

	"letna/metaverse/internal/player"
)

// Kind names a message on the wire.
type Kind string

// Outbound kinds (client to relay).
const (
	KindJoin  Kind = "join"
	KindMove  Kind = "move"
	KindChat  Kind = "chat"
	KindLeave Kind = "leave"
)

// Inbound kinds (relay to client).
const (
	KindError        Kind = "error"
	KindJoined       Kind = "joined"
	KindPlayerJoined Kind = "playerJoined"
	KindPlayerLeft   Kind = "playerLeft"
	KindPlayerMoved  Kind = "playerMoved"
	KindPlayerChat   Kind = "playerChat"
)

// Connection kinds are synthesized by the transport and never sent on the wire.
const (
	KindConnect    Kind = "connect"
	KindDisconnect Kind = "disconnect"
)

// Envelope is the frame every message travels in.
type Envelope struct {
	Type    Kind            `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinMessage asks the relay to place the client in a room.
type JoinMessage struct {
	PlayerName   string `json:"playerName"`
	RoomID       string `json:"roomId"`
	RoomPassword string `json:"roomPassword"`
	Color        string `json:"color"`
}

// MoveMessage carries the local player's new pose.
type MoveMessage struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	ThetaY float64 `json:"thetaY"`
}

// ChatMessage broadcasts a chat line to the room.
type ChatMessage struct {
	Message string `json:"message"`
}

// LeaveMessage has an empty payload.
type LeaveMessage struct{}

// RoomSnapshot is the room as sent in a joined acknowledgement.
type RoomSnapshot struct {
	ID       string          `json:"id" validate:"required"`
	Password string          `json:"password"`
	Players  []player.Player `json:"players" validate:"dive"`
}
