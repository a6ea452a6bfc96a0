package chatroom

import (
	"sync/atomic"
	"time"
)

// A simple mock connection, used to test the chat engine without an actual
// network connection.
//
// Although the registry and the sessions use the `Conn` API on this
// connection, tests access the structure directly to simulate
// interactions.
//
// To simulate a frame arriving from the client's remote endpoint, use
// `TestSend()`. To simulate the client receiving a frame, use `TestRecv()`
// (or `testRecvMsg` from registry_test.go, which also decodes it); both
// fail with `TestTimeout` instead of hanging the test.
type mockConn struct {
	// fromClient simulates incoming frames (from the server's
	// perspective) from the client's remote endpoint.
	fromClient chan string

	// fromServer simulates outgoing frames (from the server's
	// perspective) to the client's remote endpoint.
	fromServer chan string

	// stop signals, by getting closed, that the connection was closed.
	stop chan struct{}

	// Whether the connection is currently running.
	running uint32
}

// isClosed check if the connection is closed.
func (mc *mockConn) isClosed() bool {
	return atomic.LoadUint32(&mc.running) == 0
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (mc *mockConn) Close() error {
	if atomic.CompareAndSwapUint32(&mc.running, 1, 0) {
		close(mc.stop)
	}
	return nil
}

// Recv blocks until a new frame was received.
func (mc *mockConn) Recv() (string, error) {
	select {
	case msg := <-mc.fromClient:
		return msg, nil
	case <-mc.stop:
		return "", ConnEOF
	}
}

// SendStr send `msg`, previously encoded by the caller.
func (mc *mockConn) SendStr(msg string) error {
	if mc.isClosed() {
		return ConnEOF
	}

	mc.fromServer <- msg

	return nil
}

// TestSend send a frame from the client to the server.
func (mc *mockConn) TestSend(msg string) error {
	if mc.isClosed() {
		return ConnEOF
	}

	select {
	case mc.fromClient <- msg:
		return nil
	case <-mc.stop:
		return ConnEOF
	}
}

// TestRecv wait for up to `timeout` for a frame from the server.
func (mc *mockConn) TestRecv(timeout time.Duration) (string, error) {
	select {
	case msg := <-mc.fromServer:
		return msg, nil
	case <-time.After(timeout):
		return "", TestTimeout
	}
}

// newMockConn create a dummy, mock connection that may be used in tests.
//
// The server-bound channel is buffered generously, so broadcasts from the
// engine never block on a test that hasn't drained it yet.
func newMockConn() *mockConn {
	return &mockConn{
		fromClient: make(chan string),
		fromServer: make(chan string, 100),
		stop:       make(chan struct{}),
		running:    1,
	}
}
