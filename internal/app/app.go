// Package app runs the client: one goroutine owns the session, lifecycle,
// reconciler and avatar, and serializes transport input, user intents and
// ticks.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"letna/metaverse/internal/avatar"
	"letna/metaverse/internal/events"
	"letna/metaverse/internal/lifecycle"
	"letna/metaverse/internal/player"
	"letna/metaverse/internal/session"
	"letna/metaverse/internal/transport"
	"letna/metaverse/internal/ui"
	"letna/metaverse/internal/world"
)

// ErrRelayClosed is returned by Run when the transport stops delivering.
var ErrRelayClosed = errors.New("relay transport closed")

// Options configures an App.
type Options struct {
	DeepLinkRoomID string
	// Form pre-fills the join form.
	Form     session.JoinParams
	AutoJoin bool

	TickInterval time.Duration
	// JoinTimeout of zero disables the timeout.
	JoinTimeout time.Duration
	SyncMode    world.SyncMode

	MaxSpeed        float64
	MaxAngularSpeed float64

	// RequestTimeout bounds how long a control request waits for the loop.
	RequestTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type App struct {
	transport transport.Transport
	session   *session.Session
	machine   *lifecycle.Machine
	world     *world.Reconciler
	avatar    *avatar.Controller
	ui        *ui.Server
	intents   chan ui.Intent

	opts     Options
	lastTick time.Time
}

// New wires a client around t, drawing peers with renderer.
func New(t transport.Transport, renderer world.Renderer, opts Options) *App {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	intents := make(chan ui.Intent)
	sess := session.New(t, events.NewBus())
	server := ui.NewServer(intents, opts.RequestTimeout)
	server.SetFormValues(opts.Form)
	rec := world.New(sess, renderer, opts.SyncMode)

	a := &App{
		transport: t,
		session:   sess,
		world:     rec,
		avatar:    avatar.New(opts.MaxSpeed, opts.MaxAngularSpeed),
		ui:        server,
		intents:   intents,
		opts:      opts,
	}
	a.machine = lifecycle.New(server, sess, rec, lifecycle.Options{
		DeepLinkRoomID: opts.DeepLinkRoomID,
		Now:            opts.Now,
	})
	a.machine.OnTransition(a.onTransition)
	return a
}

// UI returns the control API served by the entry point.
func (a *App) UI() *ui.Server { return a.ui }

// Run processes events until ctx is cancelled or the transport closes.
func (a *App) Run(ctx context.Context) error {
	a.start(ctx)
	defer a.machine.Stop()

	ticker := time.NewTicker(a.opts.TickInterval)
	defer ticker.Stop()

	inbound := a.transport.Inbound()
	for {
		select {
		case <-ctx.Done():
			a.shutdown(ctx)
			return ctx.Err()
		case env, ok := <-inbound:
			if !ok {
				slog.WarnContext(ctx, "relay transport closed", "session.id", a.session.ID)
				a.shutdown(ctx)
				return ErrRelayClosed
			}
			a.session.Handle(ctx, env)
		case in := <-a.intents:
			in.Reply <- a.apply(ctx, in)
		case now := <-ticker.C:
			a.tick(ctx, now)
		}
		a.publish()
	}
}

func (a *App) start(ctx context.Context) {
	a.lastTick = a.opts.Now()
	a.machine.Start(ctx)
	if a.opts.AutoJoin {
		a.machine.Submit(ctx)
	}
	a.publish()
}

// tick advances the avatar and checks the pending join.
func (a *App) tick(ctx context.Context, now time.Time) {
	dt := now.Sub(a.lastTick)
	a.lastTick = now

	a.machine.CheckJoinTimeout(ctx, a.opts.JoinTimeout)
	if a.machine.State() != lifecycle.StateRunning {
		return
	}
	pose, moved := a.avatar.Step(dt)
	if !moved {
		return
	}
	if err := a.session.Move(ctx, pose.X, pose.Z, pose.ThetaY); err != nil {
		slog.DebugContext(ctx, "failed to send move", "error", err)
	}
}

// apply runs one user intent and returns the reply for the control API.
func (a *App) apply(ctx context.Context, in ui.Intent) error {
	slog.DebugContext(ctx, "applying intent", "intent", in.Kind, "lifecycle.state", a.machine.State())

	switch in.Kind {
	case ui.IntentJoin:
		if !a.machine.Submit(ctx) {
			return fmt.Errorf("%w: cannot join while %s", ui.ErrRejected, a.machine.State())
		}
		if a.machine.State() != lifecycle.StateJoining {
			return errors.New(a.machine.LastError())
		}
		return nil
	case ui.IntentLeave:
		if !a.machine.Leave(ctx) {
			return fmt.Errorf("%w: cannot leave while %s", ui.ErrRejected, a.machine.State())
		}
		return nil
	case ui.IntentChat:
		if a.machine.State() != lifecycle.StateRunning {
			return fmt.Errorf("%w: %w", ui.ErrRejected, session.ErrNotJoined)
		}
		if err := a.session.Chat(ctx, in.Message); err != nil {
			return err
		}
		a.avatar.Say(in.Message)
		return nil
	case ui.IntentChatOpen:
		if a.machine.State() != lifecycle.StateRunning {
			return fmt.Errorf("%w: %w", ui.ErrRejected, session.ErrNotJoined)
		}
		a.avatar.OpenChat()
		return nil
	case ui.IntentChatClose:
		a.avatar.CloseChat()
		return nil
	case ui.IntentInput:
		a.avatar.SetKeys(in.Keys)
		return nil
	default:
		return fmt.Errorf("%w: unknown intent %q", ui.ErrRejected, in.Kind)
	}
}

func (a *App) onTransition(tr lifecycle.Transition) {
	switch {
	case tr.To == lifecycle.StateRunning:
		var pose player.Pose
		if p := a.session.Player(); p != nil {
			pose = p.Pose()
		}
		a.avatar.Reset(pose)
	case tr.From == lifecycle.StateRunning:
		a.avatar.Reset(player.Pose{})
	}
}

func (a *App) shutdown(ctx context.Context) {
	a.world.Teardown()
	if !a.session.Joined() {
		return
	}
	if err := a.session.Leave(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, transport.ErrClosed) {
		slog.WarnContext(ctx, "failed to send leave on shutdown", "error", err)
	}
}

// publish hands a copy of the current state to the control API.
func (a *App) publish() {
	snap := ui.Snapshot{
		State:     string(a.machine.State()),
		Connected: a.session.Connected(),
		LastError: a.machine.LastError(),
		Bubble:    a.avatar.Bubble(),
		Chatting:  a.avatar.Chatting(),
		Keys:      a.avatar.Keys(),
	}
	if r := a.session.Room(); r != nil {
		snap.RoomID = r.ID
	}
	if p := a.session.Player(); p != nil {
		local := *p
		snap.Player = &local
	}
	peers := a.world.Peers()
	snap.Peers = make([]player.Player, len(peers))
	for i, peer := range peers {
		snap.Peers[i] = peer.Player
	}
	a.ui.Publish(snap)
}
