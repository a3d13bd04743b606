package session

import (
	"context"
	"testing"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/player"
	"letna/metaverse/internal/transport/mocks"
	"letna/metaverse/pkg/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func envelope(t *testing.T, kind proto.Kind, payload any) proto.Envelope {
	t.Helper()
	env, err := proto.NewEnvelope(kind, payload)
	require.NoError(t, err)
	return env
}

// recorder captures every event name published on a bus, in order.
type recorder struct {
	names  []string
	events []events.Event
}

func record(bus *events.Bus) *recorder {
	r := &recorder{}
	for _, name := range []string{
		events.NameJoined, events.NamePlayerJoined, events.NamePlayerLeft, events.NamePlayerMoved,
		events.NamePlayerChat, events.NameError, events.NameDisconnected, events.NameUpdate,
	} {
		bus.On(name, func(e events.Event) {
			r.names = append(r.names, e.Name())
			r.events = append(r.events, e)
		})
	}
	return r
}

func (r *recorder) reset() {
	r.names = nil
	r.events = nil
}

func newTestSession(t *testing.T) (*Session, *mocks.MockTransport, *recorder) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	bus := events.NewBus()
	rec := record(bus)
	return New(tr, bus), tr, rec
}

func joinedEnvelope(t *testing.T, self string, players ...player.Player) proto.Envelope {
	var me player.Player
	for _, p := range players {
		if p.ID == self {
			me = p
		}
	}
	return envelope(t, proto.KindJoined, proto.JoinedMessage{
		Room:   proto.RoomSnapshot{ID: "r1", Password: "pw", Players: players},
		Player: me,
	})
}

func TestSession_ConnectAndJoined(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()

	s.Handle(ctx, proto.Envelope{Type: proto.KindConnect})
	assert.True(t, s.Connected())
	assert.False(t, s.Joined())

	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A", Name: "alice"}, player.Player{ID: "B", Name: "bob"}))

	require.True(t, s.Joined())
	assert.Equal(t, "r1", s.Room().ID)
	assert.Equal(t, "A", s.LocalPlayerID())
	assert.Same(t, s.Room().FindPlayer("A"), s.Player(), "local player must be a reference into the room")
	assert.Equal(t, []string{events.NameJoined, events.NameUpdate}, rec.names)
}

func TestSession_JoinedWithoutSelfInSnapshot(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Handle(context.Background(), envelope(t, proto.KindJoined, proto.JoinedMessage{
		Room:   proto.RoomSnapshot{ID: "r1", Players: []player.Player{{ID: "B"}}},
		Player: player.Player{ID: "A"},
	}))

	assert.Equal(t, []string{"B", "A"}, s.Room().PlayerIDs())
	assert.Same(t, s.Room().FindPlayer("A"), s.Player())
}

func TestSession_PlayerJoinedIsIdempotent(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))
	rec.reset()

	joined := envelope(t, proto.KindPlayerJoined, proto.PlayerJoinedMessage{Player: player.Player{ID: "B", X: 1, Z: 2}})
	s.Handle(ctx, joined)
	s.Handle(ctx, joined)

	assert.Equal(t, []string{"A", "B"}, s.Room().PlayerIDs())
	assert.Equal(t, []string{events.NamePlayerJoined, events.NameUpdate}, rec.names)
}

func TestSession_EventsSeePostUpdateState(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))

	var seen []string
	events.Subscribe(s.Bus(), func(e events.PlayerJoined) {
		seen = s.Room().PlayerIDs()
	})
	s.Handle(ctx, envelope(t, proto.KindPlayerJoined, proto.PlayerJoinedMessage{Player: player.Player{ID: "B"}}))

	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestSession_PlayerMovedForUnknownIDIsDropped(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))
	rec.reset()

	moved := envelope(t, proto.KindPlayerMoved, proto.PlayerMovedMessage{Player: player.Player{ID: "B", X: 5, Z: 2, ThetaY: 1.2}})
	s.Handle(ctx, moved)
	assert.Empty(t, rec.names)
	assert.Nil(t, s.Room().FindPlayer("B"))

	s.Handle(ctx, envelope(t, proto.KindPlayerJoined, proto.PlayerJoinedMessage{Player: player.Player{ID: "B"}}))
	s.Handle(ctx, moved)

	assert.Equal(t, player.Pose{X: 5, Z: 2, ThetaY: 1.2}, s.Room().FindPlayer("B").Pose())
	require.Len(t, rec.events, 4)
	assert.Equal(t, events.PlayerMoved{ID: "B", X: 5, Z: 2, ThetaY: 1.2}, rec.events[2])
}

func TestSession_PlayerLeft(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}, player.Player{ID: "B"}))
	rec.reset()

	s.Handle(ctx, envelope(t, proto.KindPlayerLeft, proto.PlayerLeftMessage{ID: "ghost"}))
	assert.Empty(t, rec.names)

	s.Handle(ctx, envelope(t, proto.KindPlayerLeft, proto.PlayerLeftMessage{ID: "B"}))
	assert.Equal(t, []string{"A"}, s.Room().PlayerIDs())
	assert.Equal(t, events.PlayerLeft{ID: "B"}, rec.events[0])
}

func TestSession_RoomEventsBeforeJoinAreIgnored(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()

	s.Handle(ctx, envelope(t, proto.KindPlayerJoined, proto.PlayerJoinedMessage{Player: player.Player{ID: "B"}}))
	s.Handle(ctx, envelope(t, proto.KindPlayerMoved, proto.PlayerMovedMessage{Player: player.Player{ID: "B"}}))
	s.Handle(ctx, envelope(t, proto.KindPlayerLeft, proto.PlayerLeftMessage{ID: "B"}))

	assert.Empty(t, rec.names)
	assert.False(t, s.Joined())
}

func TestSession_ChatAndError(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}, player.Player{ID: "B"}))
	rec.reset()

	s.Handle(ctx, envelope(t, proto.KindPlayerChat, proto.PlayerChatMessage{Player: player.Player{ID: "B"}, Message: "hi"}))
	s.Handle(ctx, envelope(t, proto.KindError, proto.ErrorMessage{Error: "room full"}))

	assert.Equal(t, []events.Event{
		events.PlayerChat{ID: "B", Message: "hi"},
		events.Error{Error: "room full"},
	}, rec.events)
	assert.True(t, s.Joined(), "a relay error does not touch the mirror")
}

func TestSession_DisconnectDropsRoom(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, proto.Envelope{Type: proto.KindConnect})
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))
	rec.reset()

	s.Handle(ctx, envelope(t, proto.KindDisconnect, proto.Disconnected{Reason: "EOF"}))

	assert.False(t, s.Connected())
	assert.False(t, s.Joined())
	assert.Nil(t, s.Player())
	assert.Equal(t, []events.Event{events.Disconnected{Reason: "EOF"}}, rec.events)
}

func TestSession_UndecodableMessagesAreDropped(t *testing.T) {
	s, _, rec := newTestSession(t)
	s.Handle(context.Background(), proto.Envelope{Type: "teleport"})
	s.Handle(context.Background(), proto.Envelope{Type: proto.KindPlayerLeft, Payload: []byte(`{"playerId":"B"}`)})
	assert.Empty(t, rec.names)
}

func TestSession_Join(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()
	params := JoinParams{RoomID: "r1", RoomPassword: "pw", PlayerName: "alice", Color: "red"}

	tr.EXPECT().Send(proto.KindJoin, proto.JoinMessage{
		PlayerName: "alice", RoomID: "r1", RoomPassword: "pw", Color: "red",
	}).Return(nil)
	require.NoError(t, s.Join(ctx, params))

	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))
	assert.ErrorIs(t, s.Join(ctx, params), ErrAlreadyJoined)
}

func TestSession_OutboundRequiresRoom(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Move(ctx, 1, 2, 3), ErrNotJoined)
	assert.ErrorIs(t, s.Chat(ctx, "hi"), ErrNotJoined)
}

func TestSession_MoveSkipsUnchangedPose(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))

	gomock.InOrder(
		tr.EXPECT().Send(proto.KindMove, proto.MoveMessage{X: 1, Z: 2, ThetaY: 0.5}).Return(nil),
		tr.EXPECT().Send(proto.KindMove, proto.MoveMessage{X: 1, Z: 3, ThetaY: 0.5}).Return(nil),
	)

	require.NoError(t, s.Move(ctx, 1, 2, 0.5))
	require.NoError(t, s.Move(ctx, 1, 2, 0.5))
	require.NoError(t, s.Move(ctx, 1, 3, 0.5))
	assert.Equal(t, player.Pose{X: 1, Z: 3, ThetaY: 0.5}, s.Player().Pose())
}

func TestSession_LeaveClearsRoom(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()
	s.Handle(ctx, joinedEnvelope(t, "A", player.Player{ID: "A"}))

	tr.EXPECT().Send(proto.KindLeave, proto.LeaveMessage{}).Return(nil)
	tr.EXPECT().Send(proto.KindChat, proto.ChatMessage{Message: "bye"}).Return(nil)

	require.NoError(t, s.Chat(ctx, "bye"))
	require.NoError(t, s.Leave(ctx))
	assert.False(t, s.Joined())
}
