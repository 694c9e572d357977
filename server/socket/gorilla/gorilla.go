// Package gorilla implements a websocket connection by wrapping gorilla/websocket.
package gorilla

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/permutationlock/catacrawl/server/socket"
)

type (
	// Upgrader implements the socket.Upgrader interface by wrapping a gorilla/websocket Upgrader.
	Upgrader struct {
		*websocket.Upgrader
	}

	// Conn implements the socket.Conn interface by wrapping a gorilla/websocket connection.
	Conn struct {
		*websocket.Conn
	}
)

// closeWriteWait is how long writing a close control frame may take.
const closeWriteWait = time.Second

// NewUpgrader returns an upgrader that creates gorilla websocket connections.
func NewUpgrader() *Upgrader {
	u := new(websocket.Upgrader)
	return &Upgrader{u}
}

// Upgrade creates a Conn from the http request.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (socket.Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{c}, nil
}

// ReadMessage reads the next data frame payload from the connection.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, p, err := c.Conn.ReadMessage()
	return p, err
}

// WriteMessage writes the text as a text frame on the connection.
func (c *Conn) WriteMessage(text string) error {
	return c.Conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// WritePing writes a ping message on the connection.
func (c *Conn) WritePing() error {
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose writes a close message with the reason on the connection.  The connection is NOT closed.
// Close is a control frame, so it may be written concurrently with the write pump.
func (c *Conn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return c.Conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(closeWriteWait))
}

// IsNormalClose determines if the error message is not an unexpected close error.
func (*Conn) IsNormalClose(err error) bool {
	_, ok := err.(*websocket.CloseError) // only errors from gorilla can be normal close errors
	return ok && !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
