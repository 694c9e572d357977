// Package game defines the contracts between the session servers and the pluggable game and matchmaker modules.
package game

import "encoding/json"

type (
	// PlayerID identifies a player across the matchmaking and game servers.
	// Ids are produced from verified token claims and are never reused.
	PlayerID uint64

	// Message is an outgoing frame produced by a game module.
	// Broadcast messages go to every connected player in the game; otherwise the message goes to ID.
	Message struct {
		// Text is the frame payload, already encoded as JSON.
		Text string
		// Broadcast is a flag to send the message to all connected players.
		Broadcast bool
		// ID is the target player when the message is not a broadcast.
		ID PlayerID
	}

	// LoginData is the normalized payload of a verified login token.
	LoginData struct {
		// ID is the player id of the token's recipient.
		ID PlayerID `json:"id"`
		// Data is the opaque module payload carried by the token.
		Data json.RawMessage `json:"data"`
	}

	// Module is the rules engine for one game.
	// A module is built from the login payload of the first player to connect and is opaque to the server.
	// Calls are serialized by the server; implementations must not block and must not retain the json they are passed.
	Module interface {
		// Valid reports whether the construction payload was acceptable.  Invalid modules are discarded silently.
		Valid() bool
		// CreatorID returns the player id of the login payload the module was built from.
		CreatorID() PlayerID
		// PlayerList returns the ids of all players expected to participate.
		PlayerList() []PlayerID
		// Connect records that the player has a live connection.  Idempotent.
		Connect(id PlayerID)
		// Disconnect records that the player lost its connection.  Idempotent.
		Disconnect(id PlayerID)
		// PlayerUpdate processes a move from the player.  Invalid moves are dropped silently.
		PlayerUpdate(id PlayerID, text json.RawMessage)
		// GameUpdate advances simulated time by deltaMS milliseconds.
		GameUpdate(deltaMS int64)
		// Done reports whether the game is over.
		Done() bool
		// PopMessage removes and returns the oldest outgoing message, if any.
		PopMessage() (Message, bool)
	}

	// ModuleFactory builds a game module from a login payload.
	ModuleFactory func(login json.RawMessage) Module

	// Group is a set of sessions the matchmaker paired into one game.
	Group struct {
		// Sessions are the player ids to receive join tokens.
		Sessions []PlayerID
		// ID identifies the matched group in the issued tokens.
		ID string
		// Data is the module payload to embed in each token.
		Data json.RawMessage
	}

	// SessionMessage is an out-of-band frame for a session that is still waiting.
	SessionMessage struct {
		Session PlayerID
		Text    string
	}

	// Matchmaker groups waiting sessions into games.
	// Calls are serialized by the matchmaking server and must not block.
	Matchmaker interface {
		// ValidSession reports whether the session payload of a login token is acceptable.
		ValidSession(data json.RawMessage) bool
		// CanMatch cheaply reports whether Match could produce at least one group.
		CanMatch(sessions map[PlayerID]json.RawMessage) bool
		// Match groups waiting sessions.  It must not mutate sessions; the caller
		// removes the sessions of each returned group from the pool.
		Match(sessions map[PlayerID]json.RawMessage, deltaMS int64) ([]Group, []SessionMessage)
		// CancelData returns the frame payload sent to a session whose match fell through.
		CancelData() json.RawMessage
	}
)
