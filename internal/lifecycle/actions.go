package lifecycle

import (
	"context"
	"log/slog"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/validator"
)

func (m *Machine) initialize(ctx context.Context) {
	m.ui.ShowJoinForm(m.opts.DeepLinkRoomID)
	m.ui.SetJoinEnabled(true)
}

func (m *Machine) join(ctx context.Context) {
	m.ui.SetJoinEnabled(false)

	params := m.ui.JoinFormValues()
	if err := validator.GetValidator().Struct(params); err != nil {
		m.Fail(ctx, validator.Message(err))
		return
	}
	if err := m.session.Join(ctx, params); err != nil {
		m.Fail(ctx, err.Error())
	}
}

func (m *Machine) run(ctx context.Context) {
	m.ui.HideJoinForm()
	m.world.Activate()
}

func (m *Machine) leave(ctx context.Context) {
	m.teardown(ctx, true)
	m.Request(ctx, StateInitializing)
}

func (m *Machine) fail(ctx context.Context) {
	m.teardown(ctx, false)
	m.ui.ShowError(m.lastError)
	m.Request(ctx, StateInitializing)
}

// teardown releases the peer view and the room. Both steps are no-ops when
// there is nothing to release.
func (m *Machine) teardown(ctx context.Context, always bool) {
	m.world.Teardown()
	if always || m.session.Joined() {
		if err := m.session.Leave(ctx); err != nil {
			slog.WarnContext(ctx, "failed to send leave", "error", err)
		}
	}
}

func (m *Machine) onJoined(e events.Joined) {
	if m.Request(m.ctx, StateRunning) || m.state == StateRunning {
		return
	}
	// A late acknowledgement for a join we already gave up on.
	slog.WarnContext(m.ctx, "dropping stale join acknowledgement", "room.id", e.RoomID, "lifecycle.state", m.state)
	if err := m.session.Leave(m.ctx); err != nil {
		slog.WarnContext(m.ctx, "failed to send leave", "error", err)
	}
}

func (m *Machine) onError(e events.Error) {
	m.Fail(m.ctx, e.Error)
}

func (m *Machine) onDisconnected(e events.Disconnected) {
	if m.state == StateJoining || m.state == StateRunning {
		m.Fail(m.ctx, MsgConnectionLost)
	}
}
