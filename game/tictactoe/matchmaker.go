package tictactoe

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/permutationlock/catacrawl/game"
)

// Matchmaker pairs waiting sessions into tic-tac-toe games in ascending
// player id order.  The lower id of each pair plays x.
type Matchmaker struct{}

func NewMatchmaker() Matchmaker {
	return Matchmaker{}
}

// ValidSession accepts every authenticated session; tic-tac-toe needs no
// session payload to queue a player.
func (Matchmaker) ValidSession(data json.RawMessage) bool {
	return true
}

// CanMatch reports whether at least one pair can be formed.
func (Matchmaker) CanMatch(sessions map[game.PlayerID]json.RawMessage) bool {
	return len(sessions) > 1
}

// Match pairs as many sessions as possible.  An odd session is left waiting.
func (Matchmaker) Match(sessions map[game.PlayerID]json.RawMessage, deltaMS int64) ([]game.Group, []game.SessionMessage) {
	ids := make([]game.PlayerID, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	var groups []game.Group
	for len(ids) > 1 {
		pair := []game.PlayerID{ids[0], ids[1]}
		ids = ids[2:]
		data, _ := json.Marshal(matchData{
			Matched: true,
			Players: pair,
		})
		groups = append(groups, game.Group{
			Sessions: pair,
			ID:       uuid.NewString(),
			Data:     data,
		})
	}
	return groups, nil
}

// CancelData is the frame payload for sessions whose match fell through.
func (Matchmaker) CancelData() json.RawMessage {
	return json.RawMessage(`{"matched":false}`)
}
