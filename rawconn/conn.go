// Package rawconn implements the chatroom.Conn interface over a raw
// WebSocket connection from https://github.com/gobwas/ws, without any
// intermediate buffering or goroutines.
package rawconn

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"chatroom"
)

// rawConn wrap a gobwas/ws server-side connection into a chatroom.Conn.
type rawConn struct {
	// The underlying network connection, already upgraded.
	conn net.Conn

	// pending text frames already read but not yet returned by `Recv()`.
	// Only ever touched by the receiving goroutine.
	pending []string

	// sendMutex synchronizes write operations on `conn`.
	sendMutex sync.Mutex

	// Whether the connection is currently active.
	active uint32
}

// isActive check if the connection is still active.
func (c *rawConn) isActive() bool {
	return atomic.LoadUint32(&c.active) == 1
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (c *rawConn) Close() error {
	if atomic.CompareAndSwapUint32(&c.active, 1, 0) {
		c.conn.Close()
	}

	return nil
}

// write a server-side frame, properly synchronizing the connection.
func (c *rawConn) write(op ws.OpCode, data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.isActive() {
		return chatroom.ConnEOF
	}
	return wsutil.WriteServerMessage(c.conn, op, data)
}

// Recv blocks until a new text frame was received.
//
// Control frames are handled inline: pings are ponged back and a close
// frame terminates the connection.
func (c *rawConn) Recv() (string, error) {
	for c.isActive() {
		if len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			return msg, nil
		}

		msgs, err := wsutil.ReadClientMessage(c.conn, nil)
		if err != nil {
			c.Close()
			return "", chatroom.ConnEOF
		}

		for i := range msgs {
			data := &msgs[i]
			switch data.OpCode {
			case ws.OpClose:
				c.Close()
				return "", chatroom.ConnEOF
			case ws.OpPing:
				err = c.write(ws.OpPong, data.Payload)
				if err != nil {
					c.Close()
					return "", chatroom.ConnEOF
				}
			case ws.OpText:
				c.pending = append(c.pending, string(data.Payload))
			default:
				// Pongs and binary frames are ignored.
				continue
			}
		}
	}

	return "", chatroom.ConnEOF
}

// SendStr send `msg`, previously encoded by the caller.
func (c *rawConn) SendStr(msg string) error {
	err := c.write(ws.OpText, []byte(msg))
	if err != nil {
		c.Close()
		return chatroom.ConnEOF
	}
	return nil
}

// Wrap an already upgraded network connection into a chatroom.Conn.
func Wrap(conn net.Conn) chatroom.Conn {
	return &rawConn{
		conn:   conn,
		active: 1,
	}
}

// Upgrade a HTTP request to a chat connection, hijacking the underlying
// network connection.
func Upgrade(w http.ResponseWriter, req *http.Request) (chatroom.Conn, error) {
	conn, _, _, err := ws.UpgradeHTTP(req, w)
	if err != nil {
		return nil, err
	}

	return Wrap(conn), nil
}
