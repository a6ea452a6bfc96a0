package chatroom

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Session drives a single client connection.
//
// It owns the connection exclusively: it runs the receive loop, parses
// inbound lines into commands, calls into the registry and translates the
// resulting events into outbound frames. A session is a member of at most
// one room at any instant.
type Session struct {
	// id uniquely identifies this session within the registry.
	id string

	// The session's display name.
	name string

	// The connection to the session's remote endpoint.
	conn Conn

	// The registry this session operates on.
	reg *Registry

	// room currently joined by this session, empty while in none. Only
	// written while holding the registry's lock, and only by this
	// session's own calls into the registry, so the session may read it
	// freely from its own goroutine.
	room string

	// Whether the session is currently running.
	running uint32
}

// NewSession create a new session for `conn`, identified to other members
// as `name`.
//
// The receive loop is not started; call `Run()`, typically from the
// goroutine that accepted the connection.
//
// If `conn` is nil, then this function will panic!
func NewSession(reg *Registry, conn Conn, name string) (*Session, error) {
	if conn == nil {
		panic("chatroom NewSession: nil conn")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, InvalidName
	} else if max := reg.conf.MaxNameLen; max > 0 && len(name) > max {
		return nil, InvalidName
	}

	return &Session{
		id:      uuid.NewString(),
		name:    name,
		conn:    conn,
		reg:     reg,
		running: 1,
	}, nil
}

// ID retrieve the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Name retrieve the session's display name.
func (s *Session) Name() string {
	return s.name
}

// isRunning check if the session is still running.
func (s *Session) isRunning() bool {
	return atomic.LoadUint32(&s.running) == 1
}

// Run the session until the client quits or the transport fails.
//
// Run blocks, waiting for inbound frames; callers that accept connections
// on their own goroutine may simply call `go s.Run()`.
func (s *Session) Run() {
	defer s.Close()

	s.whisper(KindSystem, s.reg.conf.WelcomeText)

	for s.isRunning() {
		line, err := s.conn.Recv()
		if err != nil {
			s.reg.debugf("Session of %s: connection closed: %+v",
				s.name, err)
			return
		}

		if !s.dispatch(line) {
			return
		}
	}
}

// Close the session: force-leave the current room, if any, and release the
// connection.
//
// This can safely be called multiple times (and from multiple goroutines),
// as it will only run on the first call.
func (s *Session) Close() error {
	if atomic.CompareAndSwapUint32(&s.running, 1, 0) {
		s.reg.Leave(s)
		s.conn.Close()
	}

	return nil
}

// dispatch a single inbound line, reporting whether the receive loop
// should keep going.
func (s *Session) dispatch(line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		// A malformed command only ever bothers its sender.
		s.whisper(KindError, "Unrecognized command; type /help for the list")
		return true
	}

	switch cmd.kind {
	case cmdJoin:
		s.join(cmd.arg)
	case cmdLeave:
		s.leave()
	case cmdList:
		s.list()
	case cmdRooms:
		s.listRooms()
	case cmdHelp:
		s.whisper(KindSystem, helpText)
	case cmdQuit:
		s.whisper(KindSystem, "Goodbye!")
		return false
	case cmdChat:
		s.chat(cmd.arg)
	}

	return true
}

// join the room named `roomName`, reporting the outcome to the session.
//
// On success, the session receives the new room's roster; everyone in the
// room, the joiner included, gets the join notice broadcast by the
// registry.
func (s *Session) join(roomName string) {
	err := s.reg.Join(roomName, s)
	switch err {
	case nil:
		s.whisper(KindRoster, strings.Join(s.reg.Roster(s.room), ", "))
	case InvalidRoom:
		s.whisper(KindError, "Invalid room name")
	case NameTaken:
		s.whisper(KindError, "The name "+s.name+" is already taken in "+roomName)
	case ServerClosed:
		s.whisper(KindError, "The server is shutting down")
	default:
		s.whisper(KindError, err.Error())
	}
}

// leave the current room.
func (s *Session) leave() {
	if len(s.room) == 0 {
		s.whisper(KindError, "You are not in a room")
		return
	}

	s.reg.Leave(s)
}

// list the members of the current room.
func (s *Session) list() {
	if len(s.room) == 0 {
		s.whisper(KindError, "You are not in a room")
		return
	}

	s.whisper(KindRoster, strings.Join(s.reg.Roster(s.room), ", "))
}

// listRooms report every active room and its member count.
func (s *Session) listRooms() {
	infos := s.reg.Rooms()
	if len(infos) == 0 {
		s.whisper(KindRooms, "No active rooms")
		return
	}

	parts := lo.Map(infos, func(info RoomInfo, _ int) string {
		return fmt.Sprintf("%s (%d)", info.Name, info.Members)
	})
	s.whisper(KindRooms, strings.Join(parts, ", "))
}

// chat broadcast `body` to the current room. The sender receives its own
// message echoed back, like any other member.
func (s *Session) chat(body string) {
	if len(s.room) == 0 {
		s.whisper(KindError, "Join a room first; type /help for the commands")
		return
	}

	if len(strings.TrimSpace(body)) == 0 {
		s.whisper(KindError, "Message cannot be empty")
		return
	} else if max := s.reg.conf.MaxMessageLen; max > 0 && len(body) > max {
		s.whisper(KindError, "Message is too long")
		return
	}

	s.reg.Broadcast(s.room, newMessage(KindChat, s.room, s.name, body), "")
}

// whisper send a frame to this session only.
//
// A failed write means the transport is dead: the session tears itself
// down, and whatever room it was in is notified through the usual leave
// path.
func (s *Session) whisper(kind, body string) {
	msg := newMessage(kind, s.room, "", body)

	err := s.conn.SendStr(msg.Encode())
	if err != nil {
		s.reg.debugf("Session of %s: dropped whisper: %+v", s.name, err)
		s.Close()
	}
}
