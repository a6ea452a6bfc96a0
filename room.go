package chatroom

import (
	"sort"

	"github.com/samber/lo"
)

// member associates a session with the room it currently belongs to.
//
// The room references the member's connection but does not own it; the
// connection is owned by its session.
type member struct {
	// id of the owning session.
	id string

	// The member's display name, unique within its room.
	name string

	// The connection to the member's remote endpoint.
	conn Conn
}

// room is a named set of members sharing a broadcast scope.
//
// A room only exists while it has members: the registry creates it on the
// first join and deletes it as soon as the last member is removed, so an
// empty room is never observable through the registry.
//
// Every method suffixed `Unsafe` assumes that the caller holds the
// registry's lock.
type room struct {
	// name of this room.
	name string

	// Collection of members currently active in this room, keyed by
	// session id.
	members map[string]*member
}

// newRoom create a new, empty room named `name`.
func newRoom(name string) *room {
	return &room{
		name:    name,
		members: make(map[string]*member),
	}
}

// emptyUnsafe check whether the room has no members left.
func (r *room) emptyUnsafe() bool {
	return len(r.members) == 0
}

// hasNameUnsafe check whether any member already uses the display name
// `name`.
func (r *room) hasNameUnsafe(name string) bool {
	for _, m := range r.members {
		if m.name == name {
			return true
		}
	}
	return false
}

// addUnsafe insert `m` into the room's member set.
func (r *room) addUnsafe(m *member) {
	r.members[m.id] = m
}

// removeUnsafe delete the member identified by `id`, reporting whether it
// was actually a member.
func (r *room) removeUnsafe(id string) bool {
	_, ok := r.members[id]
	if ok {
		delete(r.members, id)
	}
	return ok
}

// rosterUnsafe snapshot the display names of every current member, sorted
// for listing. The snapshot is stale the instant it is returned.
func (r *room) rosterUnsafe() []string {
	names := lo.Map(lo.Values(r.members), func(m *member, _ int) string {
		return m.name
	})
	sort.Strings(names)
	return names
}

// broadcastUnsafe send the encoded `frame` to every member except
// `excludeID`, returning the members whose send failed.
//
// Failed members are not removed here; the registry prunes them, so it can
// also notify the survivors and delete the room once it empties out.
func (r *room) broadcastUnsafe(frame, excludeID string) []*member {
	var dead []*member

	for id, m := range r.members {
		if id == excludeID {
			continue
		}

		err := m.conn.SendStr(frame)
		if err != nil {
			dead = append(dead, m)
		}
	}

	return dead
}
