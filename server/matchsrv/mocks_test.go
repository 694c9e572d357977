package matchsrv

import (
	"encoding/json"

	"github.com/permutationlock/catacrawl/game"
)

type mockMatchmaker struct {
	ValidSessionFunc func(data json.RawMessage) bool
	CanMatchFunc     func(sessions map[game.PlayerID]json.RawMessage) bool
	MatchFunc        func(sessions map[game.PlayerID]json.RawMessage, deltaMS int64) ([]game.Group, []game.SessionMessage)
	CancelDataFunc   func() json.RawMessage
}

func (m *mockMatchmaker) ValidSession(data json.RawMessage) bool {
	return m.ValidSessionFunc(data)
}

func (m *mockMatchmaker) CanMatch(sessions map[game.PlayerID]json.RawMessage) bool {
	return m.CanMatchFunc(sessions)
}

func (m *mockMatchmaker) Match(sessions map[game.PlayerID]json.RawMessage, deltaMS int64) ([]game.Group, []game.SessionMessage) {
	return m.MatchFunc(sessions, deltaMS)
}

func (m *mockMatchmaker) CancelData() json.RawMessage {
	return m.CancelDataFunc()
}

// newMockMatchmaker creates a matchmaker that accepts every session and never matches.
func newMockMatchmaker() *mockMatchmaker {
	m := mockMatchmaker{
		ValidSessionFunc: func(json.RawMessage) bool { return true },
		CanMatchFunc:     func(map[game.PlayerID]json.RawMessage) bool { return false },
		MatchFunc: func(map[game.PlayerID]json.RawMessage, int64) ([]game.Group, []game.SessionMessage) {
			return nil, nil
		},
		CancelDataFunc: func() json.RawMessage { return json.RawMessage(`{"matched":false}`) },
	}
	return &m
}

type mockHandle struct {
	SendFunc  func(text string) error
	CloseFunc func(reason string)
}

func (m *mockHandle) Send(text string) error {
	return m.SendFunc(text)
}

func (m *mockHandle) Close(reason string) {
	m.CloseFunc(reason)
}

// newMockHandle creates a handle that accepts sends and closes.
func newMockHandle() *mockHandle {
	m := mockHandle{
		SendFunc:  func(string) error { return nil },
		CloseFunc: func(string) {},
	}
	return &m
}

type mockVerifier struct {
	LoginFunc func(tokenText string) (json.RawMessage, error)
}

func (m *mockVerifier) Login(tokenText string) (json.RawMessage, error) {
	return m.LoginFunc(tokenText)
}

type mockSigner struct {
	SignFunc func(id game.PlayerID, groupID string, data json.RawMessage) (string, error)
}

func (m *mockSigner) Sign(id game.PlayerID, groupID string, data json.RawMessage) (string, error) {
	return m.SignFunc(id, groupID, data)
}
