// Package socket bridges websocket connections to the action queue a dispatcher consumes.
package socket

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/permutationlock/catacrawl/server/action"
	"github.com/permutationlock/catacrawl/server/log"
)

type (
	// Socket is one live client connection.
	// It is the handle the servers store in their session tables.
	Socket struct {
		conn   Conn
		out    chan string
		done   chan struct{}
		once   sync.Once
		reason string
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the messages that are read and written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// ReadWait is the amount of time that can pass between receiving client messages or pongs before timing out.
		ReadWait time.Duration
		// WriteWait is the amount of time that the socket can take to write a message.
		WriteWait time.Duration
		// PingPeriod is how often ping messages should be sent.  Should be less than ReadWait.
		PingPeriod time.Duration
		// QueueLen is the number of outgoing frames that can wait to be written before sends are dropped.
		QueueLen int
	}

	// Conn is the connection that backs the socket.
	Conn interface {
		// ReadMessage reads the next text frame from the connection.
		ReadMessage() ([]byte, error)
		// WriteMessage writes the text as a frame on the connection.
		WriteMessage(text string) error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// SetReadDeadline sets the deadline for future reads.
		SetReadDeadline(t time.Time) error
		// SetWriteDeadline sets the deadline for future writes.
		SetWriteDeadline(t time.Time) error
		// SetPongHandler sets the handler to run when pong messages arrive.
		SetPongHandler(h func(appData string) error)
		// Close closes the connection.
		Close() error
		// IsNormalClose determines if the error is a normal close error.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
	}

	// Upgrader turns http requests into connections.
	Upgrader interface {
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}

	// Handler upgrades http requests to sockets whose events feed the action queue.
	Handler struct {
		upgrader Upgrader
		queue    *action.Queue
		Config
	}
)

var errSocketClosed = fmt.Errorf("socket closed")

// NewHandler creates a http handler that runs a socket for each upgraded connection.
func (cfg Config) NewHandler(upgrader Upgrader, queue *action.Queue) (*Handler, error) {
	if err := cfg.validate(upgrader, queue); err != nil {
		return nil, fmt.Errorf("creating socket handler: validation: %w", err)
	}
	h := Handler{
		upgrader: upgrader,
		queue:    queue,
		Config:   cfg,
	}
	return &h, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(upgrader Upgrader, queue *action.Queue) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case upgrader == nil:
		return fmt.Errorf("upgrader required")
	case queue == nil:
		return fmt.Errorf("action queue required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	case cfg.QueueLen <= 0:
		return fmt.Errorf("positive queue length required")
	}
	return nil
}

// ServeHTTP upgrades the request and runs the socket until its connection dies.
// The socket's open, message, and close events are pushed to the action queue in arrival order.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r)
	if err != nil {
		h.Log.Printf("upgrading connection: %v", err)
		return
	}
	s := newSocket(conn, h.Config)
	if h.Debug {
		h.Log.Printf("socket connected from %v", conn.RemoteAddr())
	}
	h.queue.Push(action.Action{Kind: action.Open, Handle: s})
	go s.writeMessages()
	s.readMessages(h.queue) // BLOCKING
}

// newSocket creates a socket around the connection.
func newSocket(conn Conn, cfg Config) *Socket {
	s := Socket{
		conn:   conn,
		out:    make(chan string, cfg.QueueLen),
		done:   make(chan struct{}),
		Config: cfg,
	}
	return &s
}

// Send queues a text frame for the write pump.
// It never blocks; the frame is dropped with an error when the socket is closed or its queue is full.
func (s *Socket) Send(text string) error {
	select {
	case <-s.done:
		return errSocketClosed
	default:
	}
	select {
	case s.out <- text:
		return nil
	default:
		return fmt.Errorf("send queue full for %v", s.conn.RemoteAddr())
	}
}

// Close asks the write pump to flush queued frames, write a close frame with the reason, and tear the connection down.
// Safe to call more than once and from the dispatcher and tick goroutines concurrently.
// Only the first reason is reported to the client.
func (s *Socket) Close(reason string) {
	s.once.Do(func() {
		s.reason = reason
		close(s.done)
	})
}

// readMessages pushes a Message action for each arriving frame and a final
// Close action when the connection dies.  It blocks until then.
func (s *Socket) readMessages(queue *action.Queue) {
	defer queue.Push(action.Action{Kind: action.Close, Handle: s})
	defer s.Close("")
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.ReadWait))
	})
	for { // BLOCKING
		if err := s.conn.SetReadDeadline(time.Now().Add(s.ReadWait)); err != nil {
			return
		}
		p, err := s.conn.ReadMessage()
		if err != nil {
			if s.Debug && !s.conn.IsNormalClose(err) {
				s.Log.Printf("reading socket messages stopped for %v: %v", s.conn.RemoteAddr(), err)
			}
			return
		}
		if s.Debug {
			s.Log.Printf("socket read %s from %v", p, s.conn.RemoteAddr())
		}
		queue.Push(action.Action{Kind: action.Message, Handle: s, Payload: p})
	}
}

// writeMessages writes queued frames and periodic pings until the socket closes.
// It owns the teardown: frames queued before Close are flushed before the close frame is written.
func (s *Socket) writeMessages() {
	pingTicker := time.NewTicker(s.PingPeriod)
	defer pingTicker.Stop()
	defer s.conn.Close()
	for { // BLOCKING
		var err error
		select {
		case <-s.done:
			s.flushOut()
			s.conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
			s.conn.WriteClose(s.reason)
			return
		case text := <-s.out:
			if s.Debug {
				s.Log.Printf("socket writing %v to %v", text, s.conn.RemoteAddr())
			}
			s.conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
			err = s.conn.WriteMessage(text)
		case <-pingTicker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
			err = s.conn.WritePing()
		}
		if err != nil {
			if s.Debug {
				s.Log.Printf("writing socket messages stopped for %v: %v", s.conn.RemoteAddr(), err)
			}
			s.Close("")
		}
	}
}

// flushOut writes the frames that were queued before the socket was closed.
func (s *Socket) flushOut() {
	for {
		select {
		case text := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
			if err := s.conn.WriteMessage(text); err != nil {
				return
			}
		default:
			return
		}
	}
}
