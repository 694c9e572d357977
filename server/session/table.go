// Package session tracks which player identity is bound to each live connection.
package session

import (
	"sync"

	"github.com/permutationlock/catacrawl/game"
	"github.com/permutationlock/catacrawl/server/action"
)

// Table maps connection handles to player ids and back.
// Both maps are guarded by one mutex, so every player has at most one handle
// and every handle at most one player at any quiescent point.
type Table struct {
	mu      sync.Mutex
	handles map[action.Handle]game.PlayerID
	players map[game.PlayerID]action.Handle
}

// NewTable creates an empty table.
func NewTable() *Table {
	t := Table{
		handles: make(map[action.Handle]game.PlayerID),
		players: make(map[game.PlayerID]action.Handle),
	}
	return &t
}

// Bind maps the handle to the player id.
// If a different handle was bound to the player it is removed from the table
// and returned so the caller can close it.
func (t *Table) Bind(h action.Handle, id game.PlayerID) action.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.players[id]
	if ok && prev != h {
		delete(t.handles, prev)
	} else {
		prev = nil
	}
	t.handles[h] = id
	t.players[id] = h
	return prev
}

// Lookup returns the player id bound to the handle.
func (t *Table) Lookup(h action.Handle) (game.PlayerID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.handles[h]
	return id, ok
}

// Handle returns the handle bound to the player id.
func (t *Table) Handle(id game.PlayerID) (action.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.players[id]
	return h, ok
}

// Evict removes the handle's binding and returns the player id it was bound to.
func (t *Table) Evict(h action.Handle) (game.PlayerID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.handles[h]
	if !ok {
		return 0, false
	}
	delete(t.handles, h)
	if t.players[id] == h {
		delete(t.players, id)
	}
	return id, true
}

// EvictPlayer removes the player's binding and returns the handle it was bound to.
func (t *Table) EvictPlayer(id game.PlayerID) (action.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.players[id]
	if !ok {
		return nil, false
	}
	delete(t.players, id)
	delete(t.handles, h)
	return h, true
}

// Handles returns a snapshot of the bound handles.
func (t *Table) Handles() []action.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	handles := make([]action.Handle, 0, len(t.handles))
	for h := range t.handles {
		handles = append(handles, h)
	}
	return handles
}
