// Package matchsrv queues player sessions, pairs them into games, and issues signed join tokens.
package matchsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/permutationlock/catacrawl/game"
	"github.com/permutationlock/catacrawl/server/action"
	"github.com/permutationlock/catacrawl/server/log"
	"github.com/permutationlock/catacrawl/server/session"
	"github.com/permutationlock/catacrawl/server/tick"
)

type (
	// Server consumes the action queue, queues sessions, and runs the matchmaker at a fixed rate.
	Server struct {
		queue    *action.Queue
		table    *session.Table
		mu       sync.Mutex
		sessions map[game.PlayerID]json.RawMessage
		Config
	}

	// Config contains commonly shared Server properties.
	Config struct {
		// Debug is a flag that causes the server to log the frames that are read.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TickPeriod is how much time passes between matchmaker runs.
		TickPeriod time.Duration
		// Verifier checks the login tokens of connecting sessions.
		Verifier Verifier
		// Signer creates the join tokens matched sessions present to the game server.
		Signer Signer
		// Matchmaker decides which queued sessions form a game.
		Matchmaker game.Matchmaker
	}

	// Verifier extracts the login payload from a signed token.
	Verifier interface {
		Login(tokenText string) (json.RawMessage, error)
	}

	// Signer creates a join token for one member of a matched group.
	Signer interface {
		Sign(id game.PlayerID, groupID string, data json.RawMessage) (string, error)
	}
)

// NewServer creates a matchmaking server that consumes the action queue.
func (cfg Config) NewServer(queue *action.Queue) (*Server, error) {
	if err := cfg.validate(queue); err != nil {
		return nil, fmt.Errorf("creating matchmaking server: validation: %w", err)
	}
	s := Server{
		queue:    queue,
		table:    session.NewTable(),
		sessions: make(map[game.PlayerID]json.RawMessage),
		Config:   cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(queue *action.Queue) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case queue == nil:
		return fmt.Errorf("action queue required")
	case cfg.TickPeriod <= 0:
		return fmt.Errorf("positive tick period required")
	case cfg.Verifier == nil:
		return fmt.Errorf("token verifier required")
	case cfg.Signer == nil:
		return fmt.Errorf("token signer required")
	case cfg.Matchmaker == nil:
		return fmt.Errorf("matchmaker required")
	}
	return nil
}

// Run dispatches actions and runs the matchmaker until the context is canceled.
// It returns after the action queue is drained and the remaining connections are closed.
func (s *Server) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.dispatch()
	}()
	go func() {
		defer wg.Done()
		tick.Run(ctx, s.TickPeriod, s.matchSessions)
	}()
	<-ctx.Done() // BLOCKING
	s.queue.Close()
	wg.Wait()
	for _, h := range s.table.Handles() {
		h.Close("server shutting down")
	}
}

// dispatch drains the action queue until it is closed.
func (s *Server) dispatch() {
	for { // BLOCKING
		a, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.handle(a)
	}
}

// handle routes one action.
// Frames from connections that are not bound to a session are treated as
// login tokens, frames from queued sessions are ignored.
func (s *Server) handle(a action.Action) {
	switch a.Kind {
	case action.Open:
		if s.Debug {
			s.Log.Printf("connection opened")
		}
	case action.Close:
		s.sessionDisconnect(a.Handle)
	case action.Message:
		if id, ok := s.table.Lookup(a.Handle); ok {
			if s.Debug {
				s.Log.Printf("ignoring frame from queued session %v", id)
			}
			return
		}
		s.setupSession(a.Handle, a.Payload)
	}
}

// setupSession treats the frame as a login token and queues the session it proves.
// Failures leave the connection unbound so the client can try again with another frame.
func (s *Server) setupSession(h action.Handle, payload []byte) {
	login, err := s.Verifier.Login(string(payload))
	if err != nil {
		if s.Debug {
			s.Log.Printf("rejecting session: %v", err)
		}
		return
	}
	var data game.LoginData
	if err := json.Unmarshal(login, &data); err != nil {
		if s.Debug {
			s.Log.Printf("rejecting session: %v", err)
		}
		return
	}
	if !s.Matchmaker.ValidSession(data.Data) {
		if s.Debug {
			s.Log.Printf("rejecting session %v: invalid session data", data.ID)
		}
		return
	}
	prev := s.table.Bind(h, data.ID)
	s.mu.Lock()
	s.sessions[data.ID] = data.Data
	s.mu.Unlock()
	if prev != nil {
		prev.Close("player connected again")
	}
	if s.Debug {
		s.Log.Printf("session %v queued", data.ID)
	}
}

// sessionDisconnect unbinds the closed connection and drops its queued session.
// Close actions from connections that were already superseded do nothing.
func (s *Server) sessionDisconnect(h action.Handle) {
	id, ok := s.table.Evict(h)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if s.Debug {
		s.Log.Printf("session %v canceled", id)
	}
}

// matchSessions runs the matchmaker over the queued sessions and delivers its results.
func (s *Server) matchSessions(deltaMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Matchmaker.CanMatch(s.sessions) {
		return
	}
	groups, messages := s.Matchmaker.Match(s.sessions, deltaMS)
	for _, g := range groups {
		s.deliverGroup(g)
	}
	for _, m := range messages {
		if h, ok := s.table.Handle(m.Session); ok {
			if err := h.Send(m.Text); err != nil && s.Debug {
				s.Log.Printf("sending frame to session %v: %v", m.Session, err)
			}
		}
	}
}

// deliverGroup removes the matched group from the queue and the session table,
// then sends every member a signed join token and closes its connection.
// If a member disconnected before delivery, the remaining members get the
// matchmaker's cancel payload instead.  The server mutex must be held.
func (s *Server) deliverGroup(g game.Group) {
	present := make(map[game.PlayerID]action.Handle, len(g.Sessions))
	for _, id := range g.Sessions {
		delete(s.sessions, id)
		if h, ok := s.table.EvictPlayer(id); ok {
			present[id] = h
		}
	}
	if len(present) < len(g.Sessions) {
		cancel := string(s.Matchmaker.CancelData())
		for id, h := range present {
			if err := h.Send(cancel); err != nil && s.Debug {
				s.Log.Printf("sending cancel to session %v: %v", id, err)
			}
			h.Close("match canceled")
		}
		return
	}
	for id, h := range present {
		token, err := s.Signer.Sign(id, g.ID, g.Data)
		if err != nil {
			s.Log.Printf("signing join token for session %v: %v", id, err)
			h.Close("match canceled")
			continue
		}
		if err := h.Send(token); err != nil && s.Debug {
			s.Log.Printf("sending join token to session %v: %v", id, err)
		}
		h.Close("matched")
	}
	if s.Debug {
		s.Log.Printf("matched sessions %v into group %v", g.Sessions, g.ID)
	}
}
