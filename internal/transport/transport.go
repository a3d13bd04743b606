package transport

import (
	"context"
	"errors"

	"letna/metaverse/pkg/proto"
)

var (
	// ErrClosed is returned by Send once the transport has shut down.
	ErrClosed = errors.New("transport closed")
	// ErrNotConnected is returned by Send while the transport is redialing.
	ErrNotConnected = errors.New("transport not connected")
	// ErrQueueFull is returned by Send when the outbound queue cannot take more frames.
	ErrQueueFull = errors.New("transport outbound queue full")
)

//go:generate mockgen -source=transport.go -destination=mocks/transport.go -package=mocks

// Transport is a bidirectional, message-based connection to the relay.
// Inbound delivers envelopes in arrival order, including synthesized
// connect/disconnect envelopes, and is closed when the transport gives up.
type Transport interface {
	Connect(ctx context.Context) error
	Send(kind proto.Kind, payload any) error
	Inbound() <-chan proto.Envelope
	Close() error
}
