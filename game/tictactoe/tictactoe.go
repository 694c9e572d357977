// Package tictactoe implements a two-player tic-tac-toe game with per-player
// move clocks and the matchmaker that pairs sessions into games.
package tictactoe

import (
	"encoding/json"

	"github.com/permutationlock/catacrawl/game"
)

type (
	// TicTacToe runs one game of tic-tac-toe between the two matched players.
	// The first player in the match data plays x and moves first.
	// Each player has a clock that runs while it is their turn; a player whose
	// clock reaches zero loses.
	TicTacToe struct {
		valid     bool
		started   bool
		gameOver  bool
		xmove     bool
		timeState int
		xtime     int64
		otime     int64
		elapsed   int64
		creator   game.PlayerID
		players   []game.PlayerID
		seen      map[game.PlayerID]bool
		connected map[game.PlayerID]bool
		board     board
		moves     [][2]int
		messages  []game.Message
	}

	loginPayload struct {
		ID   game.PlayerID `json:"id"`
		Data matchData     `json:"data"`
	}

	// matchData is the module payload the matchmaker embeds in join tokens.
	matchData struct {
		Matched bool            `json:"matched"`
		Players []game.PlayerID `json:"players"`
	}

	moveFrame struct {
		Move []int `json:"move"`
	}

	stateFrame struct {
		Type         string   `json:"type"`
		Board        []int    `json:"board"`
		Time         int64    `json:"time"`
		OpponentTime int64    `json:"opponent_time"`
		XMove        bool     `json:"xmove"`
		State        int      `json:"state"`
		Done         bool     `json:"done"`
		YourTurn     bool     `json:"your_turn"`
		Moves        [][2]int `json:"moves"`
	}

	timeFrame struct {
		Type         string `json:"type"`
		Time         int64  `json:"time"`
		OpponentTime int64  `json:"opponent_time"`
	}
)

// startingClockMS is how much move time each player starts with.
const startingClockMS = 100000

// NewTicTacToe creates a game from the login payload of a matched player.
// The payload is only acceptable if it names two distinct matched players,
// one of whom is the payload's own player.
func NewTicTacToe(login json.RawMessage) game.Module {
	t := TicTacToe{
		xmove:     true,
		xtime:     startingClockMS,
		otime:     startingClockMS,
		seen:      make(map[game.PlayerID]bool),
		connected: make(map[game.PlayerID]bool),
		moves:     make([][2]int, 0, 9),
	}
	var l loginPayload
	if err := json.Unmarshal(login, &l); err != nil {
		return &t
	}
	t.creator = l.ID
	t.players = l.Data.Players
	t.valid = l.Data.Matched &&
		len(l.Data.Players) == 2 &&
		l.Data.Players[0] != l.Data.Players[1] &&
		(l.ID == l.Data.Players[0] || l.ID == l.Data.Players[1])
	return &t
}

func (t *TicTacToe) Valid() bool {
	return t.valid
}

func (t *TicTacToe) CreatorID() game.PlayerID {
	return t.creator
}

func (t *TicTacToe) PlayerList() []game.PlayerID {
	return t.players
}

// Connect marks the player as present.  Reconnecting players are sent the
// current game state so their board does not stay stale.
func (t *TicTacToe) Connect(id game.PlayerID) {
	t.seen[id] = true
	t.connected[id] = true
	if t.started {
		t.push(id, t.stateText(id))
	}
}

func (t *TicTacToe) Disconnect(id game.PlayerID) {
	delete(t.connected, id)
}

// PlayerUpdate applies a move frame of the form {"move":[i,j]}.
// Moves before the game starts, after it ends, out of turn, or onto an
// unplayable cell are dropped.
func (t *TicTacToe) PlayerUpdate(id game.PlayerID, text json.RawMessage) {
	var m moveFrame
	if err := json.Unmarshal(text, &m); err != nil || len(m.Move) != 2 {
		return
	}
	if !t.started || t.Done() {
		return
	}
	i, j := m.Move[0], m.Move[1]
	switch {
	case id == t.players[0] && t.xmove:
		if t.board.addX(i, j) {
			t.xmove = false
			t.moves = append(t.moves, [2]int{i, j})
			t.pushStates()
		}
	case id == t.players[1] && !t.xmove:
		if t.board.addO(i, j) {
			t.xmove = true
			t.moves = append(t.moves, [2]int{i, j})
			t.pushStates()
		}
	}
}

// GameUpdate advances the mover's clock and starts the game once both
// players have connected.  Clock updates are pushed about once a second;
// a final state frame is pushed when the game ends.
func (t *TicTacToe) GameUpdate(deltaMS int64) {
	if t.started && !t.gameOver {
		if t.xmove {
			t.xtime -= deltaMS
		} else {
			t.otime -= deltaMS
		}
		switch {
		case t.xtime <= 0:
			t.xtime = 0
			t.timeState = oValue
			t.gameOver = true
		case t.otime <= 0:
			t.otime = 0
			t.timeState = xValue
			t.gameOver = true
		}
		t.elapsed += deltaMS
		if t.elapsed >= 1000 {
			for _, id := range t.players {
				if t.connected[id] {
					t.push(id, t.timeText(id))
				}
			}
			t.elapsed = 0
		}
		if t.Done() {
			t.pushStates()
		}
		return
	}
	if !t.started && t.valid && len(t.seen) == len(t.players) {
		t.started = true
		t.pushStates()
	}
}

// Done reports whether the board is finished or a clock ran out.
func (t *TicTacToe) Done() bool {
	return t.board.done() || t.gameOver
}

func (t *TicTacToe) PopMessage() (game.Message, bool) {
	if len(t.messages) == 0 {
		return game.Message{}, false
	}
	m := t.messages[0]
	t.messages = t.messages[1:]
	return m, true
}

func (t *TicTacToe) push(id game.PlayerID, text string) {
	t.messages = append(t.messages, game.Message{Text: text, ID: id})
}

// pushStates queues a personalized state frame for every connected player.
func (t *TicTacToe) pushStates() {
	for _, id := range t.players {
		if t.connected[id] {
			t.push(id, t.stateText(id))
		}
	}
}

func (t *TicTacToe) clocks(id game.PlayerID) (own, opponent int64) {
	if id == t.players[0] {
		return t.xtime, t.otime
	}
	return t.otime, t.xtime
}

func (t *TicTacToe) stateText(id game.PlayerID) string {
	own, opponent := t.clocks(id)
	yourTurn := t.xmove == (id == t.players[0])
	f := stateFrame{
		Type:         "game",
		Board:        t.board.cells[:],
		Time:         own,
		OpponentTime: opponent,
		XMove:        t.xmove,
		State:        t.board.state + t.timeState,
		Done:         t.Done(),
		YourTurn:     yourTurn,
		Moves:        t.moves,
	}
	b, _ := json.Marshal(f)
	return string(b)
}

func (t *TicTacToe) timeText(id game.PlayerID) string {
	own, opponent := t.clocks(id)
	f := timeFrame{
		Type:         "time",
		Time:         own,
		OpponentTime: opponent,
	}
	b, _ := json.Marshal(f)
	return string(b)
}
