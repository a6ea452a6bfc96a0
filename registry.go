package chatroom

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// RoomInfo describes one active room, for listing.
type RoomInfo struct {
	// Name of the room.
	Name string `json:"name"`

	// Members currently in the room. Always at least 1, since empty rooms
	// are deleted on the spot.
	Members int `json:"members"`
}

// Registry tracks every active room in the process.
//
// All operations are serialized by a single lock, so a broadcast never
// observes a membership set mid-mutation and two sequential broadcasts from
// the same sender are delivered to every recipient in order.
type Registry struct {
	// conf used by the registry and by every session attached to it.
	conf ServerConf

	// lock every field that could be accessed concurrently.
	mu sync.Mutex

	// Every active room, keyed by name. A room in this map always has at
	// least one member.
	rooms map[string]*room

	// Whether `Close()` was already called.
	closed bool
}

// NewRegistry create a new, empty room registry configured by `conf`.
func NewRegistry(conf ServerConf) *Registry {
	return &Registry{
		conf:  conf,
		rooms: make(map[string]*room),
	}
}

// debugf log a debug message, if a logger was configured and debug logging
// was enabled.
func (reg *Registry) debugf(format string, args ...any) {
	if reg.conf.DebugLog && reg.conf.Logger != nil {
		reg.conf.Logger.Printf("[DEBUG] chatroom: "+format, args...)
	}
}

// infof log an informative message, if a logger was configured.
func (reg *Registry) infof(format string, args ...any) {
	if reg.conf.Logger != nil {
		reg.conf.Logger.Printf("[INFO] chatroom: "+format, args...)
	}
}

// Join add `s` to the room named `roomName`, creating the room if this is
// its first member.
//
// If the session was already in a different room, that membership is
// removed first, notifying the old room before the new one. Joining the
// room the session is already in is a no-op.
//
// Join fails with `InvalidRoom` for an empty or overly long room name and
// with `NameTaken` if the target room already has a member using the
// session's display name.
func (reg *Registry) Join(roomName string, s *Session) error {
	roomName = strings.TrimSpace(roomName)
	if len(roomName) == 0 {
		return InvalidRoom
	} else if max := reg.conf.MaxRoomNameLen; max > 0 && len(roomName) > max {
		return InvalidRoom
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.closed {
		return ServerClosed
	} else if s.room == roomName {
		return nil
	}

	// Refuse the join before touching the old membership, so a failed
	// switch leaves the session where it was.
	if r, ok := reg.rooms[roomName]; ok && r.hasNameUnsafe(s.name) {
		return NameTaken
	}

	if len(s.room) > 0 {
		reg.leaveUnsafe(s)
	}

	r, ok := reg.rooms[roomName]
	if !ok {
		r = newRoom(roomName)
		reg.rooms[roomName] = r
		reg.infof("Created room \"%s\"", roomName)
	}

	r.addUnsafe(&member{id: s.id, name: s.name, conn: s.conn})
	s.room = roomName
	reg.debugf("%s joined \"%s\" (%d members)", s.name, roomName,
		len(r.members))

	notice := newMessage(KindSystem, roomName, "", s.name+" joined "+roomName)
	reg.deliverUnsafe(r, notice, "")

	return nil
}

// Leave remove `s` from its current room, if any.
//
// Leaving while not in a room is a no-op, not an error, so concurrent
// disconnect paths may call this freely.
func (reg *Registry) Leave(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(s.room) > 0 {
		reg.leaveUnsafe(s)
	}
}

// leaveUnsafe remove `s` from its current room, notify the remaining
// members and delete the room if it became empty.
func (reg *Registry) leaveUnsafe(s *Session) {
	roomName := s.room
	s.room = ""

	r, ok := reg.rooms[roomName]
	if !ok {
		// The membership was already pruned by a broadcast.
		return
	}

	if !r.removeUnsafe(s.id) {
		return
	}
	reg.debugf("%s left \"%s\" (%d members)", s.name, roomName,
		len(r.members))

	if r.emptyUnsafe() {
		reg.dropRoomUnsafe(r)
		return
	}

	notice := newMessage(KindSystem, roomName, "", s.name+" left "+roomName)
	reg.deliverUnsafe(r, notice, "")
}

// Broadcast deliver `msg` to every current member of `roomName`, except
// the member identified by `excludeID`, if any.
//
// Members whose transport is found dead are pruned from the room as part
// of this call, and the room is deleted if that empties it. Broadcasting
// to a room that does not exist is a no-op: a room that vanished
// concurrently simply has no recipients.
func (reg *Registry) Broadcast(roomName string, msg *Message, excludeID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomName]
	if !ok {
		reg.debugf("Dropping broadcast to vanished room \"%s\"", roomName)
		return
	}

	reg.deliverUnsafe(r, msg, excludeID)
}

// deliverUnsafe fan `msg` out to the members of `r`, pruning every member
// whose send failed and notifying the survivors about each removal. The
// room is deleted if the pruning empties it.
func (reg *Registry) deliverUnsafe(r *room, msg *Message, excludeID string) {
	dead := r.broadcastUnsafe(msg.Encode(), excludeID)

	// Pruned members get a leave notice broadcast on their behalf, which
	// may itself reveal more dead connections. The loop terminates since
	// the membership strictly shrinks.
	for len(dead) > 0 {
		var next []*member

		for _, m := range dead {
			if !r.removeUnsafe(m.id) {
				continue
			}
			reg.infof("Pruning %s from \"%s\": connection is dead",
				m.name, r.name)
			m.conn.Close()

			notice := newMessage(KindSystem, r.name, "",
				m.name+" left "+r.name)
			next = append(next, r.broadcastUnsafe(notice.Encode(), "")...)
		}

		dead = next
	}

	if r.emptyUnsafe() {
		reg.dropRoomUnsafe(r)
	}
}

// dropRoomUnsafe delete the now empty room `r` from the registry.
func (reg *Registry) dropRoomUnsafe(r *room) {
	delete(reg.rooms, r.name)
	reg.infof("Removed empty room \"%s\"", r.name)
}

// Roster snapshot the display names of every current member of `roomName`,
// sorted for listing.
//
// The snapshot is stale the instant it is returned, which is fine given
// the best-effort delivery semantics. A room that does not exist has an
// empty roster.
func (reg *Registry) Roster(roomName string) []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomName]
	if !ok {
		return nil
	}
	return r.rosterUnsafe()
}

// Rooms snapshot every active room and its member count, sorted by name.
func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	infos := lo.MapToSlice(reg.rooms, func(name string, r *room) RoomInfo {
		return RoomInfo{Name: name, Members: len(r.members)}
	})
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Close the registry, dropping every room and closing every member
// connection.
//
// This can safely be called multiple times. After the first call, `Join`
// fails with `ServerClosed`.
func (reg *Registry) Close() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.closed {
		return nil
	}
	reg.closed = true

	for name, r := range reg.rooms {
		for _, m := range r.members {
			m.conn.Close()
		}
		delete(reg.rooms, name)
	}
	reg.infof("Registry closed")

	return nil
}
