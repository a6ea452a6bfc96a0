package chatroom

// Error type for this package.
type ChatError uint

const (
	// ConnEOF is reported when a connection's transport was closed, either
	// by the remote endpoint or locally.
	ConnEOF ChatError = iota
	// InvalidRoom is reported for an empty or otherwise illegal room name.
	InvalidRoom
	// InvalidCommand is reported for an unknown command verb or a command
	// with a missing required argument.
	InvalidCommand
	// InvalidName is reported for an empty or overly long display name.
	InvalidName
	// NameTaken is reported when a room already has a member with the
	// requested display name.
	NameTaken
	// ServerClosed is reported by operations on an already closed registry.
	ServerClosed
	// TestTimeout is reported by mock connections that did not receive a
	// message in a timely manner.
	TestTimeout
)

func (c ChatError) Error() string {
	switch c {
	case ConnEOF:
		return "The connection was closed"
	case InvalidRoom:
		return "Invalid room name"
	case InvalidCommand:
		return "Invalid command"
	case InvalidName:
		return "Invalid display name"
	case NameTaken:
		return "Display name already taken in this room"
	case ServerClosed:
		return "The server was closed"
	case TestTimeout:
		return "The mock connection did not receive a message in a timely manner"
	default:
		return "Unknown error"
	}
}
