package socket

import (
	"net"
	"net/http"
	"time"
)

// mockAddr implements the net.Addr interface
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

type mockConn struct {
	ReadMessageFunc      func() ([]byte, error)
	WriteMessageFunc     func(text string) error
	WritePingFunc        func() error
	WriteCloseFunc       func(reason string) error
	SetReadDeadlineFunc  func(t time.Time) error
	SetWriteDeadlineFunc func(t time.Time) error
	SetPongHandlerFunc   func(h func(appData string) error)
	CloseFunc            func() error
	IsNormalCloseFunc    func(err error) bool
	RemoteAddrFunc       func() net.Addr
}

func (m *mockConn) ReadMessage() ([]byte, error) {
	return m.ReadMessageFunc()
}

func (m *mockConn) WriteMessage(text string) error {
	return m.WriteMessageFunc(text)
}

func (m *mockConn) WritePing() error {
	return m.WritePingFunc()
}

func (m *mockConn) WriteClose(reason string) error {
	return m.WriteCloseFunc(reason)
}

func (m *mockConn) SetReadDeadline(t time.Time) error {
	return m.SetReadDeadlineFunc(t)
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return m.SetWriteDeadlineFunc(t)
}

func (m *mockConn) SetPongHandler(h func(appData string) error) {
	m.SetPongHandlerFunc(h)
}

func (m *mockConn) Close() error {
	return m.CloseFunc()
}

func (m *mockConn) IsNormalClose(err error) bool {
	return m.IsNormalCloseFunc(err)
}

func (m *mockConn) RemoteAddr() net.Addr {
	return m.RemoteAddrFunc()
}

// newMockConn creates a quiet connection whose reads block until it is closed.
// Tests override the fields they care about.
func newMockConn() *mockConn {
	blocked := make(chan struct{})
	return &mockConn{
		ReadMessageFunc: func() ([]byte, error) {
			<-blocked
			return nil, http.ErrServerClosed
		},
		WriteMessageFunc:     func(text string) error { return nil },
		WritePingFunc:        func() error { return nil },
		WriteCloseFunc:       func(reason string) error { return nil },
		SetReadDeadlineFunc:  func(t time.Time) error { return nil },
		SetWriteDeadlineFunc: func(t time.Time) error { return nil },
		SetPongHandlerFunc:   func(h func(appData string) error) {},
		CloseFunc: func() error {
			close(blocked)
			return nil
		},
		IsNormalCloseFunc: func(err error) bool { return false },
		RemoteAddrFunc:    func() net.Addr { return mockAddr("mock") },
	}
}

type mockUpgrader struct {
	UpgradeFunc func(w http.ResponseWriter, r *http.Request) (Conn, error)
}

func (m *mockUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	return m.UpgradeFunc(w, r)
}
