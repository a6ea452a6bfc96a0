/*
Package chatroom implements a connection-agnostic, multi-room chat engine.

The engine is divided into four components:

  - `Conn`: a duplex connection to the remote client
  - `Registry`: the process-wide mapping from room names to rooms
  - `Session`: the per-connection control loop
  - a `room`, never exported by the API: the named set of members that a
    broadcast fans out to

The first step is to instantiate a `Registry`:

	conf := chatroom.GetDefaultServerConf()
	// Modify 'conf' as desired
	reg := chatroom.NewRegistry(conf)

A `Registry` by itself doesn't do anything. Rooms are created lazily when
the first member joins them and are deleted as soon as the last member
leaves, so there's nothing to set up ahead of time.

Whenever the surrounding server accepts a new client, it wraps the client's
transport in something that implements the `Conn` interface (see `wsconn`
and `rawconn` for the WebSocket implementations, or the mock connection in
`conn_test.go`) and starts a session for it:

	sess, err := chatroom.NewSession(reg, conn, "the-user")
	if err != nil {
		// Handle the error
	}
	go sess.Run()

From this point onward the session drives everything. Inbound lines are
parsed into commands: `/join <room>`, `/leave`, `/list`, `/rooms`, `/help`
and `/quit`, while any other line is broadcast as chat to the session's
current room. Outbound frames are JSON-encoded `Message` values, tagged
with a kind (`chat`, `system`, `error`, `roster` or `rooms`) so clients can
render them appropriately.

Delivery is best-effort: a broadcast reaches the members that are alive at
that moment, members whose transport turns out to be dead are pruned as
part of the broadcast, and nothing is ever persisted or retried. A sender
does receive its own chat messages echoed back, just like any other member
of the room.
*/
package chatroom
