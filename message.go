package chatroom

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// The kind of an outbound frame, as seen by the remote client.
const (
	// KindChat is a regular message sent by a room member.
	KindChat = "chat"
	// KindSystem is a server-generated announcement (welcome, join/leave
	// notices, help).
	KindSystem = "system"
	// KindError reports a failed command back to its sender only.
	KindError = "error"
	// KindRoster lists the members of a single room.
	KindRoster = "roster"
	// KindRooms lists every active room and its member count.
	KindRooms = "rooms"
)

// Message is a single outbound frame, alongside its metadata.
//
// Messages are transient: one is built per event, encoded and handed to the
// recipients' connections, and never stored by the server.
type Message struct {
	// ID uniquely identifies the message, mostly for client-side
	// de-duplication and debugging.
	ID string `json:"id"`

	// Kind of the frame. One of the Kind* constants.
	Kind string `json:"kind"`

	// Room that the message refers to. Empty for frames that are not
	// scoped to a room, like the welcome message.
	Room string `json:"room,omitempty"`

	// From whom the message was sent. Empty for system-generated frames.
	From string `json:"from,omitempty"`

	// Body of the message.
	Body string `json:"body"`

	// CreatedAt is the date when the message was built by the server.
	CreatedAt time.Time `json:"created_at"`
}

// newMessage build a new message of the given kind, setting its `CreatedAt`
// to the current time and generating a fresh ID.
func newMessage(kind, room, from, body string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Room:      room,
		From:      from,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// Encode the message into the text frame sent over a Conn.
func (m *Message) Encode() string {
	buf, err := json.Marshal(m)
	if err != nil {
		// Every field is a plain string or a time.Time, so this cannot
		// fail in practice.
		return ""
	}
	return string(buf)
}

// DecodeMessage parses a text frame previously produced by `Encode()`.
//
// The server never decodes its own frames; this is provided for clients,
// like cmd/chat-client.
func DecodeMessage(frame string) (*Message, error) {
	var m Message

	err := json.Unmarshal([]byte(frame), &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
