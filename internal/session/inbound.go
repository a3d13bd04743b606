package session

import (
	"context"
	"log/slog"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/room"
	"letna/metaverse/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Handle decodes one envelope from the transport, applies it to the room
// mirror and publishes the resulting event. Undecodable envelopes are dropped.
func (s *Session) Handle(ctx context.Context, env proto.Envelope) {
	ctx, span := tracer.Start(ctx, "session.Handle", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("message.type", string(env.Type)),
	))
	defer span.End()

	if s.received != nil {
		s.received.Add(ctx, 1, metric.WithAttributes(attribute.String("message.type", string(env.Type))))
	}

	msg, err := proto.Decode(env)
	if err != nil {
		slog.WarnContext(ctx, "dropping inbound message", "message.type", env.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Undecodable inbound message")
		return
	}
	s.handlers[msg.Kind()](ctx, msg)
}

func (s *Session) onConnect(ctx context.Context, _ proto.Connected) {
	s.connected = true
	slog.InfoContext(ctx, "session connected", "session.id", s.ID)
}

// onDisconnect drops the room: the relay forgets membership with the socket.
func (s *Session) onDisconnect(ctx context.Context, msg proto.Disconnected) {
	s.connected = false
	s.reset()
	slog.WarnContext(ctx, "session disconnected", "session.id", s.ID, "reason", msg.Reason)
	events.Emit(s.bus, events.Disconnected{Reason: msg.Reason})
}

func (s *Session) onError(ctx context.Context, msg proto.ErrorMessage) {
	slog.WarnContext(ctx, "relay reported error", "error", msg.Error)
	events.Emit(s.bus, events.Error{Error: msg.Error})
}

func (s *Session) onJoined(ctx context.Context, msg proto.JoinedMessage) {
	r := room.NewRoom(msg.Room.ID, msg.Room.Password, msg.Room.Players)
	local := r.FindPlayer(msg.Player.ID)
	if local == nil {
		p := msg.Player
		local = &p
		r.AddPlayer(local)
	}
	s.room = r
	s.player = local
	s.lastPose = nil

	slog.InfoContext(ctx, "joined room", "room.id", r.ID, "player.id", local.ID, "players.count", len(r.Players))
	events.Emit(s.bus, events.Joined{RoomID: r.ID, PlayerID: local.ID})
	events.Emit(s.bus, events.Update{})
}

func (s *Session) onPlayerJoined(ctx context.Context, msg proto.PlayerJoinedMessage) {
	if s.room == nil {
		slog.DebugContext(ctx, "ignoring playerJoined outside a room", "player.id", msg.Player.ID)
		return
	}
	p := msg.Player
	if !s.room.AddPlayer(&p) {
		slog.DebugContext(ctx, "ignoring duplicate playerJoined", "player.id", p.ID)
		return
	}
	events.Emit(s.bus, events.PlayerJoined{Player: p})
	events.Emit(s.bus, events.Update{})
}

func (s *Session) onPlayerLeft(ctx context.Context, msg proto.PlayerLeftMessage) {
	if s.room == nil || !s.room.RemovePlayer(msg.ID) {
		slog.DebugContext(ctx, "ignoring playerLeft for unknown player", "player.id", msg.ID)
		return
	}
	events.Emit(s.bus, events.PlayerLeft{ID: msg.ID})
	events.Emit(s.bus, events.Update{})
}

// onPlayerMoved drops moves for unknown ids; a later playerJoined carries
// the player's pose anyway.
func (s *Session) onPlayerMoved(ctx context.Context, msg proto.PlayerMovedMessage) {
	if s.room == nil {
		return
	}
	p := s.room.MovePlayer(msg.Player.ID, msg.Player.Pose())
	if p == nil {
		slog.DebugContext(ctx, "ignoring playerMoved for unknown player", "player.id", msg.Player.ID)
		return
	}
	events.Emit(s.bus, events.PlayerMoved{ID: p.ID, X: p.X, Z: p.Z, ThetaY: p.ThetaY})
	events.Emit(s.bus, events.Update{})
}

func (s *Session) onPlayerChat(ctx context.Context, msg proto.PlayerChatMessage) {
	slog.DebugContext(ctx, "chat received", "player.id", msg.Player.ID)
	events.Emit(s.bus, events.PlayerChat{ID: msg.Player.ID, Message: msg.Message})
}
