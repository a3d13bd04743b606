package ui

import (
	"errors"

	"letna/metaverse/internal/avatar"
	"letna/metaverse/internal/player"
	"letna/metaverse/internal/session"
)

// ErrRejected marks an intent the app loop refused in its current state.
var ErrRejected = errors.New("intent rejected")

// IntentKind names a user action posted to the app loop.
type IntentKind string

const (
	IntentJoin      IntentKind = "join"
	IntentLeave     IntentKind = "leave"
	IntentChat      IntentKind = "chat"
	IntentChatOpen  IntentKind = "chat_open"
	IntentChatClose IntentKind = "chat_close"
	IntentInput     IntentKind = "input"
)

// Intent is one user action. The loop answers on Reply exactly once.
type Intent struct {
	Kind    IntentKind
	Message string
	Keys    avatar.Keys
	Reply   chan error
}

// NewIntent returns an intent of kind with a buffered reply channel.
func NewIntent(kind IntentKind) Intent {
	return Intent{Kind: kind, Reply: make(chan error, 1)}
}

// Snapshot is the read-only view the app loop publishes after each
// iteration.
type Snapshot struct {
	State     string          `json:"state"`
	Connected bool            `json:"connected"`
	RoomID    string          `json:"roomId,omitempty"`
	Player    *player.Player  `json:"player,omitempty"`
	LastError string          `json:"lastError,omitempty"`
	Bubble    string          `json:"bubble,omitempty"`
	Chatting  bool            `json:"chatting"`
	Keys      avatar.Keys     `json:"keys"`
	Peers     []player.Player `json:"-"`
}

// Form is what the join form currently shows.
type Form struct {
	Visible bool               `json:"visible"`
	Enabled bool               `json:"enabled"`
	Values  session.JoinParams `json:"values"`
	Notice  string             `json:"notice,omitempty"`
}
