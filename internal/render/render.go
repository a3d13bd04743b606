// Package render provides world.Renderer adapters for a headless client:
// peer visuals become log lines or commands published to a broker.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"letna/metaverse/internal/player"
	"letna/metaverse/internal/world"
)

const (
	handlePrefix     = "peer:"
	defaultQueueSize = 256
)

// Op is the kind of a renderer command.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDestroy Op = "destroy"
	OpChat    Op = "chat"
)

// Command is the JSON document published for every renderer call.
type Command struct {
	Op      Op             `json:"op"`
	ID      string         `json:"id"`
	Player  *player.Player `json:"player,omitempty"`
	Pose    *player.Pose   `json:"pose,omitempty"`
	Message string         `json:"message,omitempty"`
}

// HandleFor returns the visual handle of the peer with the given id.
func HandleFor(id string) world.Handle {
	return world.Handle(handlePrefix + id)
}

// PeerID is the inverse of HandleFor.
func PeerID(h world.Handle) string {
	return strings.TrimPrefix(string(h), handlePrefix)
}

// Sink delivers encoded commands to an external consumer.
type Sink interface {
	Send(ctx context.Context, cmd Command) error
}

// Remote turns renderer calls into commands for a Sink. Commands are queued
// and delivered in order by a single worker, so a slow broker never stalls
// the caller. Delivery failures and overflow are logged; the reconciler
// never sees them.
type Remote struct {
	sink    Sink
	timeout time.Duration
	queue   chan Command
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRemote wraps sink and starts its delivery worker. Each command gets its
// own timeout. Close stops the worker.
func NewRemote(sink Sink, timeout time.Duration) *Remote {
	return newRemote(sink, timeout, defaultQueueSize)
}

func newRemote(sink Sink, timeout time.Duration, queueSize int) *Remote {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	r := &Remote{
		sink:    sink,
		timeout: timeout,
		queue:   make(chan Command, queueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Remote) CreatePeerVisual(p player.Player) world.Handle {
	r.send(Command{Op: OpCreate, ID: p.ID, Player: &p})
	return HandleFor(p.ID)
}

func (r *Remote) UpdatePeerVisual(h world.Handle, pose player.Pose) {
	r.send(Command{Op: OpUpdate, ID: PeerID(h), Pose: &pose})
}

func (r *Remote) DestroyPeerVisual(h world.Handle) {
	r.send(Command{Op: OpDestroy, ID: PeerID(h)})
}

func (r *Remote) ShowPeerChat(h world.Handle, message string) {
	r.send(Command{Op: OpChat, ID: PeerID(h), Message: message})
}

// Close delivers whatever is still queued and stops the worker.
func (r *Remote) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Remote) send(cmd Command) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		slog.Debug("dropping render command after close", "render.op", cmd.Op, "player.id", cmd.ID)
		return
	}
	select {
	case r.queue <- cmd:
	default:
		slog.Warn("render queue full, dropping command", "render.op", cmd.Op, "player.id", cmd.ID)
	}
}

func (r *Remote) run() {
	defer close(r.done)
	for cmd := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.sink.Send(ctx, cmd); err != nil {
			slog.WarnContext(ctx, "failed to deliver render command", "render.op", cmd.Op, "player.id", cmd.ID, "error", err)
		}
		cancel()
	}
}

func encode(cmd Command) ([]byte, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s command: %w", cmd.Op, err)
	}
	return b, nil
}

var (
	_ world.Renderer     = (*Remote)(nil)
	_ world.ChatRenderer = (*Remote)(nil)
)
