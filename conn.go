package chatroom

import "io"

// Conn is a generic interface for sending and receiving text frames.
//
// Implementations must serialize their own writes: a connection is written
// to both by its own session (direct replies) and by broadcasts from the
// room it belongs to, and those writes must never interleave on the
// transport.
type Conn interface {
	io.Closer

	// Recv blocks until a new frame was received. Once the transport is
	// closed, Recv fails with `ConnEOF`, which is terminal.
	Recv() (string, error)

	// SendStr send `msg`, previously encoded by the caller. A failed send
	// marks the connection dead and is reported through the returned
	// error, never by panicking into the caller.
	SendStr(msg string) error
}
