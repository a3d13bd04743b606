package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"letna/metaverse/internal/validator"
	"letna/metaverse/pkg/proto"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait    = 5 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultPingInterval = 50 * time.Second
	defaultQueueSize    = 64
	maxMessageSize      = 1 << 20 // 1MB
)

// Options configures a WebSocket transport. Zero durations use defaults;
// a zero MaxElapsedTime retries forever.
type Options struct {
	URL            string
	MaxElapsedTime time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	QueueSize      int
	Dialer         *websocket.Dialer
}

// WebSocket is a Transport over a gorilla/websocket connection that redials
// with exponential backoff whenever the connection drops.
type WebSocket struct {
	opts     Options
	inbound  chan proto.Envelope
	outbound chan []byte
	closed   chan struct{}
	done     chan struct{}

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
}

// NewWebSocket creates a transport for opts.URL. Nothing is dialed until Connect.
func NewWebSocket(opts Options) *WebSocket {
	if opts.WriteWait == 0 {
		opts.WriteWait = defaultWriteWait
	}
	if opts.PongWait == 0 {
		opts.PongWait = defaultPongWait
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.QueueSize == 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &WebSocket{
		opts:     opts,
		inbound:  make(chan proto.Envelope, 256),
		outbound: make(chan []byte, opts.QueueSize),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Connect dials the relay, retrying with backoff, and returns once the first
// connection is up or retries are exhausted. Afterwards the transport keeps
// itself connected in the background until ctx is cancelled or Close is called.
func (t *WebSocket) Connect(ctx context.Context) error {
	conn, err := t.dial(ctx)
	if err != nil {
		close(t.done)
		close(t.inbound)
		return fmt.Errorf("failed to connect to relay %s: %w", t.opts.URL, err)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	go t.run(ctx, conn)
	return nil
}

// Send queues a frame for the write pump. Frames are never carried across a
// redial: Send fails while the connection is down, and anything still queued
// when a connection drops is discarded.
func (t *WebSocket) Send(kind proto.Kind, payload any) error {
	data, err := proto.Encode(kind, payload)
	if err != nil {
		return err
	}
	select {
	case <-t.done:
		return ErrClosed
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	select {
	case t.outbound <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Inbound returns the channel of received envelopes.
func (t *WebSocket) Inbound() <-chan proto.Envelope {
	return t.inbound
}

// Close stops reconnecting and closes the current connection.
func (t *WebSocket) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(t.opts.WriteWait))
			err = conn.Close()
		}
	})
	return err
}

func (t *WebSocket) dial(ctx context.Context) (*websocket.Conn, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = t.opts.MaxElapsedTime

	var conn *websocket.Conn
	op := func() error {
		select {
		case <-t.closed:
			return backoff.Permanent(ErrClosed)
		default:
		}
		c, _, err := t.opts.Dialer.DialContext(ctx, t.opts.URL, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "relay dial failed, retrying", "relay.url", t.opts.URL, "retry.in", wait, "error", err)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return conn, nil
}

// run owns the connection: it delivers connect, pumps until the connection
// drops, delivers disconnect, and redials.
func (t *WebSocket) run(ctx context.Context, conn *websocket.Conn) {
	defer close(t.inbound)
	defer close(t.done)

	for {
		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()

		slog.InfoContext(ctx, "connected to relay", "relay.url", t.opts.URL)
		if !t.deliver(ctx, proto.Envelope{Type: proto.KindConnect}) {
			_ = conn.Close()
			return
		}

		err := t.pump(ctx, conn)
		_ = conn.Close()
		t.mu.Lock()
		t.conn = nil
		if n := t.drainOutbound(); n > 0 {
			slog.WarnContext(ctx, "discarded frames queued on dropped connection", "frames", n)
		}
		t.mu.Unlock()

		reason, _ := json.Marshal(proto.Disconnected{Reason: err.Error()})
		if !t.deliver(ctx, proto.Envelope{Type: proto.KindDisconnect, Payload: reason}) {
			return
		}

		select {
		case <-t.closed:
			return
		case <-ctx.Done():
			return
		default:
		}

		slog.WarnContext(ctx, "relay connection lost, reconnecting", "relay.url", t.opts.URL, "error", err)
		conn, err = t.dial(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "giving up on relay", "relay.url", t.opts.URL, "error", err)
			return
		}
	}
}

// pump runs the write side in a goroutine and the read side inline. It
// returns the error that ended the connection.
func (t *WebSocket) pump(ctx context.Context, conn *websocket.Conn) error {
	stop := make(chan struct{})
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- t.writePump(ctx, conn, stop)
	}()

	err := t.readPump(ctx, conn)
	close(stop)
	if werr := <-writeErr; werr != nil && err == nil {
		err = werr
	}
	return err
}

func (t *WebSocket) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(t.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(t.opts.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(t.opts.PongWait))

		var env proto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.WarnContext(ctx, "dropping malformed frame", "error", err)
			continue
		}
		if err := validator.GetValidator().Struct(env); err != nil {
			slog.WarnContext(ctx, "dropping frame without type", "error", err)
			continue
		}
		if env.Type == proto.KindConnect || env.Type == proto.KindDisconnect {
			slog.WarnContext(ctx, "dropping reserved frame kind from relay", "message.type", env.Type)
			continue
		}
		if !t.deliver(ctx, env) {
			return ErrClosed
		}
	}
}

func (t *WebSocket) writePump(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) error {
	ticker := time.NewTicker(t.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case msg := <-t.outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(t.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.WarnContext(ctx, "failed to write frame", "error", err)
				_ = conn.Close()
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.opts.WriteWait)); err != nil {
				_ = conn.Close()
				return err
			}
		}
	}
}

// drainOutbound empties the outbound queue and reports how many frames it
// dropped.
func (t *WebSocket) drainOutbound() int {
	n := 0
	for {
		select {
		case <-t.outbound:
			n++
		default:
			return n
		}
	}
}

func (t *WebSocket) deliver(ctx context.Context, env proto.Envelope) bool {
	select {
	case t.inbound <- env:
		return true
	case <-t.closed:
		return false
	case <-ctx.Done():
		return false
	}
}
