package action

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
