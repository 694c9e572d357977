package gamesrv

import (
	"sync"

	"github.com/permutationlock/catacrawl/game"
	"github.com/permutationlock/catacrawl/server/action"
)

// Store owns the set of live games and the reverse index from player id to game.
// Players in the reverse index always point at a game in the set.
type Store struct {
	mu      sync.Mutex
	games   map[*Instance]struct{}
	players map[game.PlayerID]*Instance
}

// NewStore creates an empty game store.
func NewStore() *Store {
	s := Store{
		games:   make(map[*Instance]struct{}),
		players: make(map[game.PlayerID]*Instance),
	}
	return &s
}

// Attach connects the handle to the player's game in one critical section.
// If the player has no game, the fresh instance is added to the store with
// every player on its roster pointing at it.  The handle of a previous
// connection for the player is returned so the caller can close it, along
// with whether the fresh instance was added.
func (s *Store) Attach(id game.PlayerID, h action.Handle, fresh *Instance) (action.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.players[id]
	if !ok {
		inst = fresh
		s.games[inst] = struct{}{}
		for _, pid := range inst.PlayerList() {
			s.players[pid] = inst
		}
	}
	prev, wasConnected := inst.Connect(id, h)
	if !wasConnected || prev == h {
		prev = nil
	}
	return prev, !ok
}

// ByPlayer returns the game the player belongs to.
func (s *Store) ByPlayer(id game.PlayerID) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.players[id]
	return inst, ok
}

// DisconnectPlayer removes the player from the reverse index and marks the
// player disconnected in its game.  The game itself stays in the store until
// a tick observes it is done.
func (s *Store) DisconnectPlayer(id game.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.players[id]
	if !ok {
		return false
	}
	delete(s.players, id)
	inst.Disconnect(id)
	return true
}

// UpdateAll advances every game by the elapsed milliseconds and retires the finished ones.
// The connections of a finished game are closed with reason "game ended" and
// its players are removed from the reverse index.
func (s *Store) UpdateAll(deltaMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for inst := range s.games {
		if !inst.GameUpdate(deltaMS) {
			continue
		}
		for _, id := range inst.PlayerList() {
			if h, ok := inst.ConnectionOf(id); ok {
				h.Close("game ended")
			}
			if s.players[id] == inst {
				delete(s.players, id)
			}
		}
		delete(s.games, inst)
	}
}

// Len returns the number of live games.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}
