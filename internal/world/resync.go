package world

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Resync reconciles the peer set against the full room: peers whose player
// is gone are destroyed, missing peers are created and surviving peers take
// the room's pose. Running it again on unchanged input has no side effects.
func (r *Reconciler) Resync() (created, destroyed int) {
	_, span := tracer.Start(context.Background(), "world.Resync")
	defer span.End()

	required := make(map[string]struct{})
	rm := r.source.Room()
	localID := r.source.LocalPlayerID()
	if rm != nil {
		for _, p := range rm.Players {
			if p.ID != localID {
				required[p.ID] = struct{}{}
			}
		}
	}

	for _, id := range r.peerIDs() {
		if _, ok := required[id]; !ok && r.destroyPeer(id) {
			destroyed++
		}
	}

	if rm != nil {
		for _, p := range rm.Players {
			if peer, ok := r.peers[p.ID]; ok {
				r.updatePeer(peer, p.Pose())
				continue
			}
			if r.createPeer(*p) {
				created++
			}
		}
	}

	span.SetAttributes(
		attribute.Int("peers.created", created),
		attribute.Int("peers.destroyed", destroyed),
		attribute.Int("peers.count", len(r.peers)),
	)
	return created, destroyed
}
