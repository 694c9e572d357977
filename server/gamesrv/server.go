// Package gamesrv hosts live games and relays frames between their players.
package gamesrv

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
	// Server consumes the action queue, binds connections to players, and ticks games.
	Server struct {
		queue *action.Queue
		table *session.Table
		store *Store
		Config
	}

	// Config contains commonly shared Server properties.
	Config struct {
		// Debug is a flag that causes the server to log the frames that are read.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TickPeriod is how much time passes between game updates.
		TickPeriod time.Duration
		// Verifier checks the login tokens of connecting players.
		Verifier Verifier
		// NewModule creates a game module from a verified login payload.
		NewModule game.ModuleFactory
	}

	// Verifier extracts the login payload from a signed token.
	Verifier interface {
		Login(tokenText string) (json.RawMessage, error)
	}
)

// NewServer creates a game server that consumes the action queue.
func (cfg Config) NewServer(queue *action.Queue) (*Server, error) {
	if err := cfg.validate(queue); err != nil {
		return nil, fmt.Errorf("creating game server: validation: %w", err)
	}
	s := Server{
		queue:  queue,
		table:  session.NewTable(),
		store:  NewStore(),
		Config: cfg,
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
	case cfg.NewModule == nil:
		return fmt.Errorf("game module factory required")
	}
	return nil
}

// Run dispatches actions and ticks games until the context is canceled.
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
		tick.Run(ctx, s.TickPeriod, s.store.UpdateAll)
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
// Frames from connections that are not bound to a player are treated as login tokens.
func (s *Server) handle(a action.Action) {
	switch a.Kind {
	case action.Open:
		if s.Debug {
			s.Log.Printf("connection opened")
		}
	case action.Close:
		s.playerDisconnect(a.Handle)
	case action.Message:
		id, ok := s.table.Lookup(a.Handle)
		if !ok {
			s.setupPlayer(a.Handle, a.Payload)
			return
		}
		if s.Debug {
			s.Log.Printf("player %v sent %s", id, a.Payload)
		}
		inst, ok := s.store.ByPlayer(id)
		if !ok {
			s.Log.Printf("discarding frame from player %v without a game", id)
			return
		}
		inst.ProcessPlayerUpdate(id, a.Payload)
	}
}

// setupPlayer treats the frame as a login token and binds the connection to the player it proves.
// Failures leave the connection unbound so the client can try again with another frame.
func (s *Server) setupPlayer(h action.Handle, payload []byte) {
	login, err := s.Verifier.Login(string(payload))
	if err != nil {
		if s.Debug {
			s.Log.Printf("rejecting login: %v", err)
		}
		return
	}
	module := s.NewModule(login)
	if module == nil || !module.Valid() {
		if s.Debug {
			s.Log.Printf("rejecting login: invalid game data")
		}
		return
	}
	id := module.CreatorID()
	s.table.Bind(h, id)
	s.playerConnect(h, id, module)
}

// playerConnect attaches the connection to the player's game, creating one from the module if the player has none.
// A previous connection for the player is superseded and closed.
func (s *Server) playerConnect(h action.Handle, id game.PlayerID, module game.Module) {
	fresh := newInstance(module, s.Debug, s.Log)
	prev, created := s.store.Attach(id, h, fresh)
	if prev != nil {
		prev.Close("player connected again")
	}
	if created && s.Debug {
		s.Log.Printf("player %v created a game for players %v", id, module.PlayerList())
	}
}

// playerDisconnect unbinds the closed connection and tells the player's game, if any.
// Close actions from connections that were already superseded do nothing.
func (s *Server) playerDisconnect(h action.Handle) {
	id, ok := s.table.Evict(h)
	if !ok {
		return
	}
	if s.Debug {
		s.Log.Printf("player %v disconnected", id)
	}
	s.store.DisconnectPlayer(id)
}
