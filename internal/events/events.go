package events

import (
	"letna/metaverse/internal/eventbus"
	"letna/metaverse/internal/player"
)

// Event names emitted by the network session.
const (
	NameJoined       = "joined"
	NamePlayerJoined = "playerJoined"
	NamePlayerLeft   = "playerLeft"
	NamePlayerMoved  = "playerMoved"
	NamePlayerChat   = "playerChat"
	NameError        = "error"
	NameDisconnected = "disconnected"
	NameUpdate       = "update"
)

// Event is implemented by every session event. Name is the bus key.
type Event interface {
	Name() string
}

// Bus is the event bus shared by the session and its consumers.
type Bus = eventbus.Bus[Event]

// NewBus creates an empty session bus.
func NewBus() *Bus {
	return eventbus.New[Event]()
}

// Joined is emitted after the room mirror has been replaced.
type Joined struct {
	RoomID   string
	PlayerID string
}

// PlayerJoined is emitted after Player was appended to the room.
type PlayerJoined struct {
	Player player.Player
}

// PlayerLeft is emitted after the player was removed from the room.
type PlayerLeft struct {
	ID string
}

// PlayerMoved is emitted after a known player's pose was overwritten.
type PlayerMoved struct {
	ID     string
	X      float64
	Z      float64
	ThetaY float64
}

// Pose returns the moved player's new pose.
func (e PlayerMoved) Pose() player.Pose {
	return player.Pose{X: e.X, Z: e.Z, ThetaY: e.ThetaY}
}

// PlayerChat carries a chat line; it does not change the room.
type PlayerChat struct {
	ID      string
	Message string
}

// Error carries a human-readable error reported by the relay.
type Error struct {
	Error string
}

// Disconnected is emitted when the transport drops.
type Disconnected struct {
	Reason string
}

// Update is a coalesced "something in the room changed" signal.
type Update struct{}

func (Joined) Name() string       { return NameJoined }
func (PlayerJoined) Name() string { return NamePlayerJoined }
func (PlayerLeft) Name() string   { return NamePlayerLeft }
func (PlayerMoved) Name() string  { return NamePlayerMoved }
func (PlayerChat) Name() string   { return NamePlayerChat }
func (Error) Name() string        { return NameError }
func (Disconnected) Name() string { return NameDisconnected }
func (Update) Name() string       { return NameUpdate }

// Emit triggers e under its own name.
func Emit(bus *Bus, e Event) {
	bus.Trigger(e.Name(), e)
}

// Subscribe registers a handler for the event type T.
func Subscribe[T Event](bus *Bus, handler func(T)) (off func()) {
	var zero T
	return bus.On(zero.Name(), func(e Event) {
		if typed, ok := e.(T); ok {
			handler(typed)
		}
	})
}
