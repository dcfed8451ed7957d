package websocket

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

// Server -> Client message types. Client -> Server messages carry a
// board command type instead.
const (
	TypeBoardRendered       MessageType = "board.rendered"
	TypeFiltersRendered     MessageType = "filters.rendered"
	TypeItemRendered        MessageType = "item.rendered"
	TypeNewWaypointRendered MessageType = "new_waypoint.rendered"
	TypeFormShake           MessageType = "form.shake"
	TypeError               MessageType = "error"
)

// Message is the envelope of every server message. Broadcasts carry a Seq
// that increases by one each time; a client that sees a gap missed a
// broadcast and should fetch GET /api/board. Replies to one client carry
// no Seq.
type Message struct {
	Seq       uint64      `json:"seq,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

var lastSeq atomic.Uint64

// NewMessage creates a message stamped with the current time.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewSnapshot creates the board.rendered message sent to a new client. Its
// Seq is the last broadcast one, read before snapshot runs, so the next
// broadcast follows without a gap.
func NewSnapshot(snapshot func() any) Message {
	seq := lastSeq.Load()
	m := NewMessage(TypeBoardRendered, snapshot())
	m.Seq = seq
	return m
}

func (m Message) sequenced() Message {
	m.Seq = lastSeq.Add(1)
	return m
}

// JSON encodes the message for the wire.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ShakePayload is the payload for form.shake messages. An empty target is
// the new-waypoint form.
type ShakePayload struct {
	Target string `json:"target"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
