package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	LastSystem  string
	LastHistory []ChatMessage
	Calls       int
}

func (m *MockClient) Complete(ctx context.Context, system string, history []ChatMessage) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastHistory = history
	return m.Response, m.Err
}
