package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"letna/metaverse/internal/player"
	"letna/metaverse/internal/validator"
)

// ErrUnknownKind is returned by Decode for kinds outside the protocol.
var ErrUnknownKind = errors.New("unknown message kind")

// Inbound is the closed set of messages the client can receive.
type Inbound interface {
	Kind() Kind
	inbound()
}

// Connected is delivered by the transport after every successful dial.
type Connected struct{}

// Disconnected is delivered by the transport when the connection drops.
type Disconnected struct {
	Reason string `json:"reason,omitempty"`
}

// ErrorMessage is a human-readable error reported by the relay.
type ErrorMessage struct {
	Error string `json:"error"`
}

// JoinedMessage acknowledges a join with the full room and the local player.
type JoinedMessage struct {
	Room   RoomSnapshot  `json:"room"`
	Player player.Player `json:"player"`
}

// PlayerJoinedMessage announces a new occupant.
type PlayerJoinedMessage struct {
	Player player.Player `json:"player"`
}

// PlayerLeftMessage announces a departure. {id} is the only accepted shape.
type PlayerLeftMessage struct {
	ID string `json:"id" validate:"required"`
}

// PlayerMovedMessage carries an occupant's new pose.
type PlayerMovedMessage struct {
	Player player.Player `json:"player"`
}

// PlayerChatMessage carries a chat line from an occupant.
type PlayerChatMessage struct {
	Player  player.Player `json:"player"`
	Message string        `json:"message"`
}

func (Connected) Kind() Kind           { return KindConnect }
func (Disconnected) Kind() Kind        { return KindDisconnect }
func (ErrorMessage) Kind() Kind        { return KindError }
func (JoinedMessage) Kind() Kind       { return KindJoined }
func (PlayerJoinedMessage) Kind() Kind { return KindPlayerJoined }
func (PlayerLeftMessage) Kind() Kind   { return KindPlayerLeft }
func (PlayerMovedMessage) Kind() Kind  { return KindPlayerMoved }
func (PlayerChatMessage) Kind() Kind   { return KindPlayerChat }

func (Connected) inbound()           {}
func (Disconnected) inbound()        {}
func (ErrorMessage) inbound()        {}
func (JoinedMessage) inbound()       {}
func (PlayerJoinedMessage) inbound() {}
func (PlayerLeftMessage) inbound()   {}
func (PlayerMovedMessage) inbound()  {}
func (PlayerChatMessage) inbound()   {}

// decoders maps every inbound kind to its payload decoder.
var decoders = map[Kind]func(json.RawMessage) (Inbound, error){
	KindConnect:      decodeAs[Connected],
	KindDisconnect:   decodeAs[Disconnected],
	KindError:        decodeAs[ErrorMessage],
	KindJoined:       decodeAs[JoinedMessage],
	KindPlayerJoined: decodeAs[PlayerJoinedMessage],
	KindPlayerLeft:   decodeAs[PlayerLeftMessage],
	KindPlayerMoved:  decodeAs[PlayerMovedMessage],
	KindPlayerChat:   decodeAs[PlayerChatMessage],
}

func decodeAs[T Inbound](payload json.RawMessage) (Inbound, error) {
	var msg T
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Decode turns an envelope into its typed inbound variant.
func Decode(env Envelope) (Inbound, error) {
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	msg, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return msg, nil
}

// Encode wraps payload in an envelope of the given kind and marshals it.
func Encode(kind Kind, payload any) ([]byte, error) {
	env, err := NewEnvelope(kind, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// NewEnvelope marshals payload into an envelope of the given kind.
func NewEnvelope(kind Kind, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return Envelope{Type: kind, Payload: raw}, nil
}
