package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"letna/metaverse/internal/eventbus"
	"letna/metaverse/internal/events"
	"letna/metaverse/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lifecycle")

const transitionEvent = "transition"

// Messages surfaced to the user by the machine itself.
const (
	MsgConnectionLost = "connection lost"
	MsgJoinTimedOut   = "join timed out"
)

//go:generate mockgen -source=lifecycle.go -destination=mocks/collaborators.go -package=mocks

// UI is the join form and notice area the machine drives.
type UI interface {
	JoinFormValues() session.JoinParams
	ShowJoinForm(roomID string)
	HideJoinForm()
	SetJoinEnabled(enabled bool)
	ShowError(message string)
}

// Session is the part of the network session the machine needs.
type Session interface {
	Join(ctx context.Context, params session.JoinParams) error
	Leave(ctx context.Context) error
	Joined() bool
	Bus() *events.Bus
}

// World is the peer view constructed while running.
type World interface {
	Activate()
	Teardown()
}

// Options configures a Machine.
type Options struct {
	// DeepLinkRoomID pre-fills the room field of the join form.
	DeepLinkRoomID string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Machine is the session lifecycle state machine. Requests for illegal
// transitions are ignored. Every state change runs exactly one entry action,
// which may itself request a further transition. It is not safe for
// concurrent use.
type Machine struct {
	ui      UI
	session Session
	world   World
	opts    Options

	ctx       context.Context
	state     State
	enteredAt time.Time
	lastError string

	bus  *eventbus.Bus[Transition]
	subs []func()
}

// New creates a machine. It has no state until Start.
func New(ui UI, s Session, w World, opts Options) *Machine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Machine{
		ui:      ui,
		session: s,
		world:   w,
		opts:    opts,
		ctx:     context.Background(),
		bus:     eventbus.New[Transition](),
	}
}

// Start subscribes to session events and enters StateInitializing.
func (m *Machine) Start(ctx context.Context) {
	m.ctx = ctx
	bus := m.session.Bus()
	m.subs = append(m.subs,
		events.Subscribe(bus, m.onJoined),
		events.Subscribe(bus, m.onError),
		events.Subscribe(bus, m.onDisconnected),
	)
	m.Request(ctx, StateInitializing)
}

// Stop unsubscribes from session events.
func (m *Machine) Stop() {
	for _, off := range m.subs {
		off()
	}
	m.subs = nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// LastError returns the message most recently surfaced to the user.
func (m *Machine) LastError() string {
	return m.lastError
}

// OnTransition registers an observer for state changes.
func (m *Machine) OnTransition(handler func(Transition)) (off func()) {
	return m.bus.On(transitionEvent, handler)
}

// Submit is the join control: it requests StateJoining.
func (m *Machine) Submit(ctx context.Context) bool {
	return m.Request(ctx, StateJoining)
}

// Leave requests StateLeaving.
func (m *Machine) Leave(ctx context.Context) bool {
	return m.Request(ctx, StateLeaving)
}

// Fail records message and requests StateError.
func (m *Machine) Fail(ctx context.Context, message string) bool {
	if !CanTransition(m.state, StateError) {
		slog.DebugContext(ctx, "ignoring failure in current state", "lifecycle.state", m.state, "error", message)
		return false
	}
	m.lastError = message
	return m.Request(ctx, StateError)
}

// CheckJoinTimeout fails a join that has been pending longer than timeout.
// A zero timeout disables the check.
func (m *Machine) CheckJoinTimeout(ctx context.Context, timeout time.Duration) {
	if timeout <= 0 || m.state != StateJoining {
		return
	}
	if m.opts.Now().Sub(m.enteredAt) >= timeout {
		m.Fail(ctx, MsgJoinTimedOut)
	}
}

// Request moves to state to if the transition table allows it and runs the
// entry action. It reports whether the transition happened.
func (m *Machine) Request(ctx context.Context, to State) bool {
	from := m.state
	if !(from == "" && to == StateInitializing) && !CanTransition(from, to) {
		slog.DebugContext(ctx, "ignoring illegal transition", "lifecycle.from", from, "lifecycle.to", to)
		return false
	}

	ctx, span := tracer.Start(ctx, "lifecycle.transition", trace.WithAttributes(
		attribute.String("lifecycle.from", string(from)),
		attribute.String("lifecycle.to", string(to)),
	))
	defer span.End()

	m.state = to
	m.enteredAt = m.opts.Now()
	slog.InfoContext(ctx, "lifecycle transition", "lifecycle.from", from, "lifecycle.to", to)
	m.bus.Trigger(transitionEvent, Transition{From: from, To: to})

	switch to {
	case StateInitializing:
		m.initialize(ctx)
	case StateJoining:
		m.join(ctx)
	case StateRunning:
		m.run(ctx)
	case StateLeaving:
		m.leave(ctx)
	case StateError:
		m.fail(ctx)
	}
	return true
}
