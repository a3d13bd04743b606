package session

import (
	"context"
	"errors"
	"log/slog"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/player"
	"letna/metaverse/internal/room"
	"letna/metaverse/internal/transport"
	"letna/metaverse/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

var (
	// ErrAlreadyJoined is returned by Join while a room is held.
	ErrAlreadyJoined = errors.New("already joined a room")
	// ErrNotJoined is returned by Move and Chat before a joined acknowledgement.
	ErrNotJoined = errors.New("not joined to a room")
)

// JoinParams are the fields of a join intent. Password is opaque and is
// never checked locally.
type JoinParams struct {
	RoomID       string `json:"roomId" label:"room id" validate:"required"`
	RoomPassword string `json:"roomPassword"`
	PlayerName   string `json:"playerName" label:"player name" validate:"required"`
	Color        string `json:"color"`
}

// Session wraps one relay transport. It owns the local mirror of the joined
// room and the local player, and publishes every change on its event bus
// after the mirror has been updated. It is not safe for concurrent use.
type Session struct {
	ID string

	transport transport.Transport
	bus       *events.Bus
	handlers  map[proto.Kind]func(context.Context, proto.Inbound)

	connected bool
	room      *room.Room
	player    *player.Player
	lastPose  *player.Pose

	received metric.Int64Counter
	sent     metric.Int64Counter
}

// New creates a session that sends through t and publishes on bus.
func New(t transport.Transport, bus *events.Bus) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		transport: t,
		bus:       bus,
	}
	s.handlers = map[proto.Kind]func(context.Context, proto.Inbound){
		proto.KindConnect:      handle(s.onConnect),
		proto.KindDisconnect:   handle(s.onDisconnect),
		proto.KindError:        handle(s.onError),
		proto.KindJoined:       handle(s.onJoined),
		proto.KindPlayerJoined: handle(s.onPlayerJoined),
		proto.KindPlayerLeft:   handle(s.onPlayerLeft),
		proto.KindPlayerMoved:  handle(s.onPlayerMoved),
		proto.KindPlayerChat:   handle(s.onPlayerChat),
	}

	var err error
	if s.received, err = meter.Int64Counter("session.messages.received"); err != nil {
		slog.Warn("failed to create received counter", "error", err)
	}
	if s.sent, err = meter.Int64Counter("session.messages.sent"); err != nil {
		slog.Warn("failed to create sent counter", "error", err)
	}
	return s
}

func handle[T proto.Inbound](fn func(context.Context, T)) func(context.Context, proto.Inbound) {
	return func(ctx context.Context, msg proto.Inbound) {
		fn(ctx, msg.(T))
	}
}

// Bus returns the bus session events are published on.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// Connected reports whether the transport is currently up.
func (s *Session) Connected() bool {
	return s.connected
}

// Joined reports whether the session holds a room.
func (s *Session) Joined() bool {
	return s.room != nil
}

// Room returns the room mirror, or nil when not joined. Callers must treat it
// as read-only and valid until the next event.
func (s *Session) Room() *room.Room {
	return s.room
}

// Player returns the local player, or nil when not joined.
func (s *Session) Player() *player.Player {
	return s.player
}

// LocalPlayerID returns the local player's ID, or "" when not joined.
func (s *Session) LocalPlayerID() string {
	if s.player == nil {
		return ""
	}
	return s.player.ID
}

func (s *Session) reset() {
	s.room = nil
	s.player = nil
	s.lastPose = nil
}
