package gamesrv

import (
	"encoding/json"

	"github.com/permutationlock/catacrawl/game"
)

type mockModule struct {
	ValidFunc        func() bool
	CreatorIDFunc    func() game.PlayerID
	PlayerListFunc   func() []game.PlayerID
	ConnectFunc      func(id game.PlayerID)
	DisconnectFunc   func(id game.PlayerID)
	PlayerUpdateFunc func(id game.PlayerID, text json.RawMessage)
	GameUpdateFunc   func(deltaMS int64)
	DoneFunc         func() bool
	PopMessageFunc   func() (game.Message, bool)
}

func (m *mockModule) Valid() bool {
	return m.ValidFunc()
}

func (m *mockModule) CreatorID() game.PlayerID {
	return m.CreatorIDFunc()
}

func (m *mockModule) PlayerList() []game.PlayerID {
	return m.PlayerListFunc()
}

func (m *mockModule) Connect(id game.PlayerID) {
	m.ConnectFunc(id)
}

func (m *mockModule) Disconnect(id game.PlayerID) {
	m.DisconnectFunc(id)
}

func (m *mockModule) PlayerUpdate(id game.PlayerID, text json.RawMessage) {
	m.PlayerUpdateFunc(id, text)
}

func (m *mockModule) GameUpdate(deltaMS int64) {
	m.GameUpdateFunc(deltaMS)
}

func (m *mockModule) Done() bool {
	return m.DoneFunc()
}

func (m *mockModule) PopMessage() (game.Message, bool) {
	return m.PopMessageFunc()
}

// newMockModule creates a valid module for the roster whose callbacks do nothing.
// The first roster entry is the creator.
func newMockModule(roster ...game.PlayerID) *mockModule {
	m := mockModule{
		ValidFunc:        func() bool { return true },
		CreatorIDFunc:    func() game.PlayerID { return roster[0] },
		PlayerListFunc:   func() []game.PlayerID { return roster },
		ConnectFunc:      func(game.PlayerID) {},
		DisconnectFunc:   func(game.PlayerID) {},
		PlayerUpdateFunc: func(game.PlayerID, json.RawMessage) {},
		GameUpdateFunc:   func(int64) {},
		DoneFunc:         func() bool { return false },
		PopMessageFunc:   func() (game.Message, bool) { return game.Message{}, false },
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
