package chatroom

import "log"

// Longest accepted room name.
const defMaxRoomNameLen = 64

// Longest accepted display name.
const defMaxNameLen = 32

// Longest accepted chat message, in bytes.
const defMaxMessageLen = 512

// Message sent to every newly connected session.
const defWelcomeText = "Welcome! Type /help to list the available commands."

// ServerConf configures a `Registry` and the sessions attached to it.
type ServerConf struct {
	// Logger used by the registry and its sessions to report events. If
	// this is nil, no message shall be logged!
	Logger *log.Logger

	// Whether debug messages should be logged.
	DebugLog bool

	// MaxRoomNameLen is the longest accepted room name. Joining a room
	// with a longer name fails with `InvalidRoom`.
	MaxRoomNameLen int

	// MaxNameLen is the longest accepted display name.
	MaxNameLen int

	// MaxMessageLen is the longest accepted chat message, in bytes.
	// Longer messages are reported back to the sender as an error.
	MaxMessageLen int

	// WelcomeText is sent to every session as soon as it starts running.
	WelcomeText string
}

// GetDefaultServerConf retrieve the default configurations for the chat
// server, which may be tweaked before being supplied to `NewRegistry()`.
func GetDefaultServerConf() ServerConf {
	return ServerConf{
		Logger:         nil,
		DebugLog:       false,
		MaxRoomNameLen: defMaxRoomNameLen,
		MaxNameLen:     defMaxNameLen,
		MaxMessageLen:  defMaxMessageLen,
		WelcomeText:    defWelcomeText,
	}
}
