package world

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"letna/metaverse/internal/events"
	"letna/metaverse/internal/player"
	"letna/metaverse/internal/room"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("world")
	meter  = otel.Meter("world")
)

// Handle is an opaque renderer reference to one peer visual.
type Handle string

// Renderer draws peers. It is an external collaborator.
type Renderer interface {
	CreatePeerVisual(p player.Player) Handle
	UpdatePeerVisual(h Handle, pose player.Pose)
	DestroyPeerVisual(h Handle)
}

// ChatRenderer is implemented by renderers that can show a chat bubble.
type ChatRenderer interface {
	ShowPeerChat(h Handle, message string)
}

// RoomSource is the read side of the network session.
type RoomSource interface {
	Room() *room.Room
	LocalPlayerID() string
	Bus() *events.Bus
}

// SyncMode selects how the reconciler follows the session.
type SyncMode string

const (
	// SyncEvents applies discrete join/leave/move events.
	SyncEvents SyncMode = "events"
	// SyncResync recomputes the whole peer set on every coalesced update.
	SyncResync SyncMode = "resync"
)

// Peer is one remote player as the renderer last saw it.
type Peer struct {
	Handle Handle
	Player player.Player
}

// Reconciler keeps exactly one peer visual per remote player in the room and
// none for the local player. It is not safe for concurrent use.
type Reconciler struct {
	source   RoomSource
	renderer Renderer
	mode     SyncMode

	peers  map[string]*Peer
	subs   []func()
	active bool

	peerCount metric.Int64UpDownCounter
}

// New creates an inactive reconciler.
func New(source RoomSource, renderer Renderer, mode SyncMode) *Reconciler {
	if mode == "" {
		mode = SyncEvents
	}
	r := &Reconciler{
		source:   source,
		renderer: renderer,
		mode:     mode,
		peers:    make(map[string]*Peer),
	}
	var err error
	if r.peerCount, err = meter.Int64UpDownCounter("world.peers"); err != nil {
		slog.Warn("failed to create peer gauge", "error", err)
	}
	return r
}

// Active reports whether the reconciler is following the session.
func (r *Reconciler) Active() bool {
	return r.active
}

// Activate subscribes to the session and creates peers for everyone already
// in the room. Calling it while active is a no-op.
func (r *Reconciler) Activate() {
	if r.active {
		return
	}
	r.active = true

	bus := r.source.Bus()
	switch r.mode {
	case SyncResync:
		r.subs = append(r.subs,
			events.Subscribe(bus, func(events.Update) { r.Resync() }),
		)
	default:
		r.subs = append(r.subs,
			events.Subscribe(bus, r.OnJoined),
			events.Subscribe(bus, r.OnPlayerJoined),
			events.Subscribe(bus, r.OnPlayerLeft),
			events.Subscribe(bus, r.OnPlayerMoved),
		)
	}
	r.subs = append(r.subs, events.Subscribe(bus, r.OnPlayerChat))

	r.SetPeers()
	slog.Info("world activated", "sync.mode", r.mode, "peers.count", len(r.peers))
}

// Teardown destroys every peer visual and unsubscribes from the session.
// It is safe to call repeatedly.
func (r *Reconciler) Teardown() {
	for _, off := range r.subs {
		off()
	}
	r.subs = nil

	for _, id := range r.peerIDs() {
		r.destroyPeer(id)
	}
	if r.active {
		slog.Info("world torn down")
	}
	r.active = false
}

// SetPeers creates a peer for every remote player in the room that does not
// have one yet.
func (r *Reconciler) SetPeers() {
	rm := r.source.Room()
	if rm == nil {
		return
	}
	for _, p := range rm.Players {
		r.createPeer(*p)
	}
}

// OnJoined resyncs against the replaced room: a joined acknowledgement
// carries a whole new roster.
func (r *Reconciler) OnJoined(events.Joined) {
	r.Resync()
}

// OnPlayerJoined creates the peer if it is missing.
func (r *Reconciler) OnPlayerJoined(e events.PlayerJoined) {
	r.createPeer(e.Player)
}

// OnPlayerLeft destroys the peer if present.
func (r *Reconciler) OnPlayerLeft(e events.PlayerLeft) {
	r.destroyPeer(e.ID)
}

// OnPlayerMoved updates the pose of an existing peer.
func (r *Reconciler) OnPlayerMoved(e events.PlayerMoved) {
	peer, ok := r.peers[e.ID]
	if !ok {
		return
	}
	r.updatePeer(peer, e.Pose())
}

// OnPlayerChat shows the chat line on the peer if the renderer supports it.
func (r *Reconciler) OnPlayerChat(e events.PlayerChat) {
	peer, ok := r.peers[e.ID]
	if !ok {
		return
	}
	if chat, ok := r.renderer.(ChatRenderer); ok {
		chat.ShowPeerChat(peer.Handle, e.Message)
	}
}

// Peer returns the peer for id.
func (r *Reconciler) Peer(id string) (Peer, bool) {
	peer, ok := r.peers[id]
	if !ok {
		return Peer{}, false
	}
	return *peer, true
}

// Peers returns a snapshot of all peers ordered by player ID.
func (r *Reconciler) Peers() []Peer {
	out := make([]Peer, 0, len(r.peers))
	for _, id := range r.peerIDs() {
		out = append(out, *r.peers[id])
	}
	return out
}

func (r *Reconciler) peerIDs() []string {
	ids := make([]string, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, strings.Compare)
	return ids
}

func (r *Reconciler) createPeer(p player.Player) bool {
	if _, ok := r.peers[p.ID]; ok {
		return false
	}
	if p.ID == r.source.LocalPlayerID() {
		return false
	}
	handle := r.renderer.CreatePeerVisual(p)
	r.peers[p.ID] = &Peer{Handle: handle, Player: p}
	if r.peerCount != nil {
		r.peerCount.Add(context.Background(), 1)
	}
	slog.Debug("peer created", "player.id", p.ID, "player.name", p.Name)
	return true
}

func (r *Reconciler) destroyPeer(id string) bool {
	peer, ok := r.peers[id]
	if !ok {
		return false
	}
	r.renderer.DestroyPeerVisual(peer.Handle)
	delete(r.peers, id)
	if r.peerCount != nil {
		r.peerCount.Add(context.Background(), -1)
	}
	slog.Debug("peer destroyed", "player.id", id)
	return true
}

func (r *Reconciler) updatePeer(peer *Peer, pose player.Pose) bool {
	if peer.Player.Pose() == pose {
		return false
	}
	peer.Player.SetPose(pose)
	r.renderer.UpdatePeerVisual(peer.Handle, pose)
	return true
}
