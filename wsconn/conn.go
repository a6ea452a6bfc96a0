// Package wsconn implements the chatroom.Conn interface over a WebSocket
// connection from https://github.com/gorilla/websocket.
package wsconn

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	gows "github.com/gorilla/websocket"

	"chatroom"
)

// defaultPing is sent on ping messages as the application data.
const defaultPing = "chatroom says hi"

// module is the string used when logging messages from this package.
const module = "chatroom/wsconn"

// gwsConn wrap a gorilla/websocket connection into a chatroom.Conn.
type gwsConn struct {
	// The gorilla WebSocket connection.
	conn *gows.Conn

	// How long the connection waits without traffic until pinging the
	// remote endpoint.
	timeout time.Duration

	// ticker fires if `timeout` elapsed without receiving any message.
	ticker *time.Ticker

	// timedOut flags that the last ticker fire went unanswered.
	timedOut uint32

	// sendMutex synchronizes write operations on `conn`, so direct
	// replies, broadcasts and control frames never interleave.
	sendMutex sync.Mutex

	// Whether the connection is currently active.
	active uint32

	// stop signals, by getting closed, that the connection should get
	// closed.
	stop chan struct{}
}

// isActive check if the connection is still active.
func (c *gwsConn) isActive() bool {
	return atomic.LoadUint32(&c.active) == 1
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (c *gwsConn) Close() error {
	if atomic.CompareAndSwapUint32(&c.active, 1, 0) {
		c.ticker.Stop()
		close(c.stop)

		c.sendMutex.Lock()
		c.conn.Close()
		c.sendMutex.Unlock()
	}

	return nil
}

// resetTimeout reset the inactivity timer.
//
// This must be called whenever this connection receives any message from
// its remote endpoint.
func (c *gwsConn) resetTimeout() {
	atomic.StoreUint32(&c.timedOut, 0)
	c.ticker.Reset(c.timeout)
}

// Recv blocks until a new frame was received.
func (c *gwsConn) Recv() (string, error) {
	for c.isActive() {
		typ, txt, err := c.conn.ReadMessage()
		if err != nil {
			c.Close()
			return "", chatroom.ConnEOF
		}

		c.resetTimeout()

		switch typ {
		case gows.CloseMessage:
			c.Close()
			return "", chatroom.ConnEOF
		case gows.TextMessage:
			return string(txt), nil
		default:
			continue
		}
	}

	return "", chatroom.ConnEOF
}

// send the message, properly synchronizing the connection.
func (c *gwsConn) send(mType int, data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.isActive() {
		return chatroom.ConnEOF
	}
	return c.conn.WriteMessage(mType, data)
}

// SendStr send `msg`, previously encoded by the caller.
func (c *gwsConn) SendStr(msg string) error {
	err := c.send(gows.TextMessage, []byte(msg))
	if err != nil {
		c.Close()
		return chatroom.ConnEOF
	}
	return nil
}

// detectTimeout wait checking if the connection timed out.
//
// The first timeout pings the remote endpoint; a second consecutive one
// closes the connection.
//
// Gorilla's documentation specifies that if `SetReadDeadline` is set and a
// read times out, the websocket becomes corrupt. To work around that,
// timeouts are detected manually on this goroutine.
func (c *gwsConn) detectTimeout() {
	for c.isActive() {
		select {
		case <-c.ticker.C:
			if atomic.CompareAndSwapUint32(&c.timedOut, 0, 1) {
				err := c.send(gows.PingMessage, []byte(defaultPing))
				if err != nil {
					log.Printf("%s: Couldn't ping on timeout: %+v",
						module, err)
					c.Close()
				}
			} else {
				// Second consecutive timeout, the remote endpoint is
				// gone.
				c.Close()
			}
		case <-c.stop:
			/* Do nothing and simply exit */
		}
	}
}

// ping handle received ping messages.
//
// The WebSocket protocol defines that the receiver must respond with a
// pong carrying the same `appData`. A custom handler is used, instead of
// gorilla's default one, to guarantee that this write isn't concurrent to
// other messages.
func (c *gwsConn) ping(appData string) error {
	c.resetTimeout()
	return c.send(gows.PongMessage, []byte(appData))
}

// pong handle received pong messages, which only count as activity.
func (c *gwsConn) pong(appData string) error {
	c.resetTimeout()
	return nil
}

// Wrap an already established WebSocket connection into a chatroom.Conn.
//
// The connection times out if it doesn't receive any message from its
// remote endpoint in `timeout`: it first tries to ping the remote endpoint
// and closes if there's no response in a timely manner.
func Wrap(conn *gows.Conn, timeout time.Duration) chatroom.Conn {
	c := &gwsConn{
		conn:    conn,
		timeout: timeout,
		ticker:  time.NewTicker(timeout),
		active:  1,
		stop:    make(chan struct{}),
	}
	conn.SetPingHandler(c.ping)
	conn.SetPongHandler(c.pong)
	go c.detectTimeout()

	return c
}

// Upgrade a HTTP request to a chat connection.
//
// The supplied `upgrader` is used to upgrade the HTTP request into a
// WebSocket connection, which is then wrapped by `Wrap()`.
func Upgrade(upgrader gows.Upgrader, timeout time.Duration,
	w http.ResponseWriter, req *http.Request) (chatroom.Conn, error) {

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}

	return Wrap(conn, timeout), nil
}
