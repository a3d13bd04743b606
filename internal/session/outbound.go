package session

import (
	"context"
	"fmt"
	"log/slog"

	"letna/metaverse/internal/player"
	"letna/metaverse/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Join sends a join intent. The outcome arrives later as a joined or error
// event.
func (s *Session) Join(ctx context.Context, params JoinParams) error {
	ctx, span := tracer.Start(ctx, "session.Join", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("room.id", params.RoomID),
	))
	defer span.End()

	if s.room != nil {
		span.SetStatus(codes.Error, "Join while already joined")
		return ErrAlreadyJoined
	}

	slog.InfoContext(ctx, "joining room", "room.id", params.RoomID, "player.name", params.PlayerName)
	err := s.send(ctx, proto.KindJoin, proto.JoinMessage{
		PlayerName:   params.PlayerName,
		RoomID:       params.RoomID,
		RoomPassword: params.RoomPassword,
		Color:        params.Color,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send join")
	}
	return err
}

// Move sends the local player's pose. Repeating the last sent pose is a no-op.
func (s *Session) Move(ctx context.Context, x, z, thetaY float64) error {
	if s.room == nil {
		return ErrNotJoined
	}
	pose := player.Pose{X: x, Z: z, ThetaY: thetaY}
	if s.lastPose != nil && *s.lastPose == pose {
		return nil
	}
	if err := s.send(ctx, proto.KindMove, proto.MoveMessage{X: x, Z: z, ThetaY: thetaY}); err != nil {
		return err
	}
	s.lastPose = &pose
	if s.player != nil {
		s.player.SetPose(pose)
	}
	return nil
}

// Chat broadcasts message to the room.
func (s *Session) Chat(ctx context.Context, message string) error {
	if s.room == nil {
		return ErrNotJoined
	}
	return s.send(ctx, proto.KindChat, proto.ChatMessage{Message: message})
}

// Leave sends a leave intent without waiting for acknowledgement and drops
// the room mirror.
func (s *Session) Leave(ctx context.Context) error {
	roomID := ""
	if s.room != nil {
		roomID = s.room.ID
	}
	slog.InfoContext(ctx, "leaving room", "room.id", roomID)
	s.reset()
	return s.send(ctx, proto.KindLeave, proto.LeaveMessage{})
}

func (s *Session) send(ctx context.Context, kind proto.Kind, payload any) error {
	if err := s.transport.Send(kind, payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", kind, err)
	}
	if s.sent != nil {
		s.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("message.type", string(kind))))
	}
	return nil
}
