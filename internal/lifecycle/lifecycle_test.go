package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/lifecycle/mocks"
	"letna/metaverse/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	machine *Machine
	ui      *mocks.MockUI
	session *mocks.MockSession
	world   *mocks.MockWorld
	bus     *events.Bus
	now     time.Time
	joined  bool
	path    []Transition
}

var validParams = session.JoinParams{RoomID: "r1", PlayerName: "ana", Color: "#ff0000"}

// newFixture builds a started machine whose UI returns params and whose
// collaborators accept any call not explicitly constrained by the test.
func newFixture(t *testing.T, params session.JoinParams) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		ui:      mocks.NewMockUI(ctrl),
		session: mocks.NewMockSession(ctrl),
		world:   mocks.NewMockWorld(ctrl),
		bus:     events.NewBus(),
		now:     time.Unix(1000, 0),
	}

	f.ui.EXPECT().ShowJoinForm(gomock.Any()).AnyTimes()
	f.ui.EXPECT().HideJoinForm().AnyTimes()
	f.ui.EXPECT().SetJoinEnabled(gomock.Any()).AnyTimes()
	f.ui.EXPECT().JoinFormValues().Return(params).AnyTimes()
	f.session.EXPECT().Bus().Return(f.bus).AnyTimes()
	f.session.EXPECT().Joined().DoAndReturn(func() bool { return f.joined }).AnyTimes()

	f.machine = New(f.ui, f.session, f.world, Options{
		DeepLinkRoomID: "r1",
		Now:            func() time.Time { return f.now },
	})
	f.machine.OnTransition(func(tr Transition) { f.path = append(f.path, tr) })
	f.machine.Start(context.Background())
	t.Cleanup(f.machine.Stop)
	return f
}

// toRunning submits a valid join and acknowledges it.
func (f *fixture) toRunning(t *testing.T) {
	t.Helper()
	f.session.EXPECT().Join(gomock.Any(), validParams).DoAndReturn(func(context.Context, session.JoinParams) error {
		f.joined = true
		return nil
	})
	f.world.EXPECT().Activate()

	require.True(t, f.machine.Submit(context.Background()))
	require.Equal(t, StateJoining, f.machine.State())
	events.Emit(f.bus, events.Joined{RoomID: "r1", PlayerID: "p1"})
	require.Equal(t, StateRunning, f.machine.State())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateInitializing, StateJoining, true},
		{StateInitializing, StateRunning, false},
		{StateJoining, StateRunning, true},
		{StateJoining, StateLeaving, true},
		{StateRunning, StateJoining, false},
		{StateRunning, StateLeaving, true},
		{StateRunning, StateError, true},
		{StateLeaving, StateInitializing, true},
		{StateLeaving, StateRunning, false},
		{StateError, StateInitializing, true},
		{StateError, StateJoining, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStartEntersInitializing(t *testing.T) {
	ctrl := gomock.NewController(t)
	ui := mocks.NewMockUI(ctrl)
	sess := mocks.NewMockSession(ctrl)
	world := mocks.NewMockWorld(ctrl)

	gomock.InOrder(
		ui.EXPECT().ShowJoinForm("lobby"),
		ui.EXPECT().SetJoinEnabled(true),
	)
	sess.EXPECT().Bus().Return(events.NewBus())

	m := New(ui, sess, world, Options{DeepLinkRoomID: "lobby"})
	assert.Equal(t, State(""), m.State())
	m.Start(context.Background())
	assert.Equal(t, StateInitializing, m.State())
}

func TestIllegalTransitionIsIgnored(t *testing.T) {
	f := newFixture(t, validParams)
	f.toRunning(t)

	assert.False(t, f.machine.Request(context.Background(), StateJoining))
	assert.Equal(t, StateRunning, f.machine.State())
	assert.False(t, f.machine.Submit(context.Background()))
	assert.Equal(t, StateRunning, f.machine.State())
}

func TestLeaveFromRunning(t *testing.T) {
	f := newFixture(t, validParams)
	f.toRunning(t)

	f.world.EXPECT().Teardown()
	f.session.EXPECT().Leave(gomock.Any()).DoAndReturn(func(context.Context) error {
		f.joined = false
		return nil
	})

	require.True(t, f.machine.Leave(context.Background()))
	assert.Equal(t, StateInitializing, f.machine.State())
	assert.Equal(t, []Transition{
		{From: "", To: StateInitializing},
		{From: StateInitializing, To: StateJoining},
		{From: StateJoining, To: StateRunning},
		{From: StateRunning, To: StateLeaving},
		{From: StateLeaving, To: StateInitializing},
	}, f.path)
}

func TestLeaveWhileJoiningSendsLeave(t *testing.T) {
	f := newFixture(t, validParams)
	f.session.EXPECT().Join(gomock.Any(), validParams).Return(nil)
	require.True(t, f.machine.Submit(context.Background()))

	f.world.EXPECT().Teardown()
	f.session.EXPECT().Leave(gomock.Any()).Return(nil)

	require.True(t, f.machine.Leave(context.Background()))
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestSubmitWithoutPlayerName(t *testing.T) {
	params := validParams
	params.PlayerName = ""
	f := newFixture(t, params)

	var shown string
	f.ui.EXPECT().ShowError(gomock.Any()).Do(func(msg string) { shown = msg })
	f.world.EXPECT().Teardown()
	f.session.EXPECT().Join(gomock.Any(), gomock.Any()).Times(0)

	require.True(t, f.machine.Submit(context.Background()))

	assert.Contains(t, shown, "player name")
	assert.Equal(t, shown, f.machine.LastError())
	assert.Equal(t, StateInitializing, f.machine.State())
	assert.Contains(t, f.path, Transition{From: StateJoining, To: StateError})
	assert.Contains(t, f.path, Transition{From: StateError, To: StateInitializing})
}

func TestSubmitWithoutRoomID(t *testing.T) {
	params := validParams
	params.RoomID = ""
	f := newFixture(t, params)

	f.ui.EXPECT().ShowError("room id is required")
	f.world.EXPECT().Teardown()

	f.machine.Submit(context.Background())
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestJoinSendFailure(t *testing.T) {
	f := newFixture(t, validParams)
	f.session.EXPECT().Join(gomock.Any(), validParams).Return(errors.New("transport closed"))
	f.world.EXPECT().Teardown()
	f.ui.EXPECT().ShowError("transport closed")

	f.machine.Submit(context.Background())
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestRelayErrorWhileJoining(t *testing.T) {
	f := newFixture(t, validParams)
	f.session.EXPECT().Join(gomock.Any(), validParams).Return(nil)
	require.True(t, f.machine.Submit(context.Background()))

	f.world.EXPECT().Teardown()
	f.ui.EXPECT().ShowError("wrong password")
	f.session.EXPECT().Leave(gomock.Any()).Times(0)

	events.Emit(f.bus, events.Error{Error: "wrong password"})

	assert.Equal(t, StateInitializing, f.machine.State())
	assert.Equal(t, "wrong password", f.machine.LastError())
}

func TestRelayErrorWhileRunningTearsDown(t *testing.T) {
	f := newFixture(t, validParams)
	f.toRunning(t)

	f.world.EXPECT().Teardown()
	f.session.EXPECT().Leave(gomock.Any()).Return(nil)
	f.ui.EXPECT().ShowError("room closed")

	events.Emit(f.bus, events.Error{Error: "room closed"})
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestDisconnectWhileRunning(t *testing.T) {
	f := newFixture(t, validParams)
	f.toRunning(t)
	f.joined = false

	f.world.EXPECT().Teardown()
	f.ui.EXPECT().ShowError(MsgConnectionLost)

	events.Emit(f.bus, events.Disconnected{Reason: "eof"})
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestDisconnectWhileIdleIsIgnored(t *testing.T) {
	f := newFixture(t, validParams)

	events.Emit(f.bus, events.Disconnected{Reason: "eof"})
	assert.Equal(t, StateInitializing, f.machine.State())
	assert.Empty(t, f.machine.LastError())
}

func TestJoinTimeout(t *testing.T) {
	f := newFixture(t, validParams)
	f.session.EXPECT().Join(gomock.Any(), validParams).Return(nil)
	require.True(t, f.machine.Submit(context.Background()))

	f.now = f.now.Add(4 * time.Second)
	f.machine.CheckJoinTimeout(context.Background(), 5*time.Second)
	assert.Equal(t, StateJoining, f.machine.State())

	f.machine.CheckJoinTimeout(context.Background(), 0)
	assert.Equal(t, StateJoining, f.machine.State())

	f.world.EXPECT().Teardown()
	f.ui.EXPECT().ShowError(MsgJoinTimedOut)

	f.now = f.now.Add(time.Second)
	f.machine.CheckJoinTimeout(context.Background(), 5*time.Second)
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestStaleJoinedSendsLeave(t *testing.T) {
	f := newFixture(t, validParams)
	f.session.EXPECT().Join(gomock.Any(), validParams).Return(nil)
	require.True(t, f.machine.Submit(context.Background()))

	f.world.EXPECT().Teardown()
	f.ui.EXPECT().ShowError(MsgJoinTimedOut)
	f.now = f.now.Add(time.Minute)
	f.machine.CheckJoinTimeout(context.Background(), time.Second)
	require.Equal(t, StateInitializing, f.machine.State())

	f.session.EXPECT().Leave(gomock.Any()).Return(nil)
	events.Emit(f.bus, events.Joined{RoomID: "r1", PlayerID: "p1"})
	assert.Equal(t, StateInitializing, f.machine.State())
}

func TestDuplicateJoinedWhileRunning(t *testing.T) {
	f := newFixture(t, validParams)
	f.toRunning(t)

	events.Emit(f.bus, events.Joined{RoomID: "r1", PlayerID: "p1"})
	assert.Equal(t, StateRunning, f.machine.State())
}

func TestStopUnsubscribes(t *testing.T) {
	f := newFixture(t, validParams)
	f.machine.Stop()

	assert.Equal(t, 0, f.bus.Len(events.NameError))
	events.Emit(f.bus, events.Error{Error: "ignored"})
	assert.Equal(t, StateInitializing, f.machine.State())
}
