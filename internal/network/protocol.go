package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/amalg/go-battlecity/internal/game"
)

// MsgType tags a frame's payload.
type MsgType string

const (
	MsgJoin    MsgType = "join"    // client: JoinMsg
	MsgIntent  MsgType = "intent"  // client: IntentMsg
	MsgStart   MsgType = "start"   // client: empty
	MsgWelcome MsgType = "welcome" // server: WelcomeMsg, always the first frame
	MsgState   MsgType = "state"   // server: StateMsg, once per tick
	MsgError   MsgType = "error"   // server: ErrorMsg
)

// Envelope is one decoded frame.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinMsg asks for a seat.
type JoinMsg struct {
	Name string `json:"name"`
}

// IntentMsg carries one input event: hold a direction, release it, or fire.
type IntentMsg struct {
	ActionType game.ActionType `json:"action_type"`
	Direction  game.Direction  `json:"direction,omitempty"`
}

// WelcomeMsg tells a client which seat it got and the rules in force.
type WelcomeMsg struct {
	PlayerID string      `json:"player_id"`
	Owner    game.Owner  `json:"owner"`
	Config   game.Config `json:"config"`
}

// StateMsg is the per-tick snapshot.
type StateMsg struct {
	State game.Snapshot `json:"state"`
}

// ErrorMsg reports a refused request.
type ErrorMsg struct {
	Message string `json:"message"`
}

// maxMessageSize bounds a single frame. A full snapshot of a fresh level is
// well under this.
const maxMessageSize = 1 << 20

// ErrFrameTooLarge is returned for a frame header above maxMessageSize.
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame writes payload as [4-byte big-endian length][JSON envelope].
// Header and body go out in a single Write so frames from concurrent
// writers holding the same lock never interleave on a short write.
func WriteFrame(w io.Writer, msgType MsgType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	body, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > maxMessageSize {
		return fmt.Errorf("%s: %w (%d bytes)", msgType, ErrFrameTooLarge, len(body))
	}

	frame := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(body)), uint32(len(body)))
	frame = append(frame, body...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", msgType, err)
	}
	return nil
}

// ReadFrame reads the next frame from r.
func ReadFrame(r io.Reader) (*Envelope, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// Payload decodes env's payload as T.
func Payload[T any](env *Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return v, nil
}
