package gamesrv

import (
	"encoding/json"
	"sync"

	"github.com/permutationlock/catacrawl/game"
	"github.com/permutationlock/catacrawl/server/action"
	"github.com/permutationlock/catacrawl/server/log"
)

// Instance wraps one game module with the connections of its players.
// Every operation holds the instance mutex for the full call, so module
// callbacks never run concurrently for the same game.
type Instance struct {
	mu        sync.Mutex
	module    game.Module
	conns     map[game.PlayerID]action.Handle
	connected map[game.PlayerID]bool
	debug     bool
	log       log.Logger
}

func newInstance(module game.Module, debug bool, log log.Logger) *Instance {
	i := Instance{
		module:    module,
		conns:     make(map[game.PlayerID]action.Handle),
		connected: make(map[game.PlayerID]bool),
		debug:     debug,
		log:       log,
	}
	return &i
}

// Connect records the handle as the player's connection.
// The module is only notified when the player was not already connected.
// The handle the player was connected with before is returned so the caller
// can close it, along with whether the player was already connected.
func (i *Instance) Connect(id game.PlayerID, h action.Handle) (action.Handle, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev := i.conns[id]
	wasConnected := i.connected[id]
	i.conns[id] = h
	if !wasConnected {
		i.connected[id] = true
		i.module.Connect(id)
		i.sendMessages()
	}
	return prev, wasConnected
}

// Disconnect removes the player's connection and notifies the module.
// Disconnecting a player that is not connected does nothing.
func (i *Instance) Disconnect(id game.PlayerID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.conns, id)
	if !i.connected[id] {
		return
	}
	delete(i.connected, id)
	i.module.Disconnect(id)
}

// ProcessPlayerUpdate forwards the frame to the module and sends the frames it produces.
// Malformed frames are dropped without disturbing the module.
func (i *Instance) ProcessPlayerUpdate(id game.PlayerID, text []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !json.Valid(text) {
		if i.debug {
			i.log.Printf("discarding malformed frame from player %v", id)
		}
		return
	}
	i.module.PlayerUpdate(id, json.RawMessage(text))
	i.sendMessages()
}

// GameUpdate advances the module's clock, sends the frames it produces, and reports whether the game is over.
func (i *Instance) GameUpdate(deltaMS int64) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.module.GameUpdate(deltaMS)
	i.sendMessages()
	return i.module.Done()
}

// PlayerList returns the ids of the players the module expects.
func (i *Instance) PlayerList() []game.PlayerID {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.module.PlayerList()
}

// ConnectionOf returns the player's connection.
func (i *Instance) ConnectionOf(id game.PlayerID) (action.Handle, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	h, ok := i.conns[id]
	return h, ok
}

// IsConnected reports whether the player is connected.
func (i *Instance) IsConnected(id game.PlayerID) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.connected[id]
}

// sendMessages drains the module's output queue.
// Broadcast frames go to every connected player, targeted frames only to
// their player if connected.  The instance mutex must be held.
func (i *Instance) sendMessages() {
	for {
		m, ok := i.module.PopMessage()
		if !ok {
			return
		}
		switch {
		case m.Broadcast:
			for id, h := range i.conns {
				if err := h.Send(m.Text); err != nil && i.debug {
					i.log.Printf("sending frame to player %v: %v", id, err)
				}
			}
		case i.connected[m.ID]:
			if err := i.conns[m.ID].Send(m.Text); err != nil && i.debug {
				i.log.Printf("sending frame to player %v: %v", m.ID, err)
			}
		}
	}
}
