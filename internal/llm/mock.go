package llm

import "context"

// MockClient is a scripted test double for Client. Each Stream call plays
// back the next event script in Scripts (sticking to the last one when
// exhausted), which lets tests drive multi-iteration tool loops.
type MockClient struct {
	ProviderName string
	Scripts      [][]StreamEvent
	CompleteFunc func(ctx context.Context, req Request) (*Response, error)

	// Requests records every request received, for assertions.
	Requests []Request

	next int
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &Response{Content: "mock response"}, nil
}

func (m *MockClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	m.Requests = append(m.Requests, req)

	script := []StreamEvent{
		{Type: "chunk", Chunk: &Chunk{Text: "mock "}},
		{Type: "done", Response: &Response{Content: "mock stream response"}},
	}
	if len(m.Scripts) > 0 {
		i := m.next
		if i >= len(m.Scripts) {
			i = len(m.Scripts) - 1
		}
		script = m.Scripts[i]
		m.next++
	}

	ch := make(chan StreamEvent, len(script))
	for _, ev := range script {
		ch <- ev
	}
	close(ch)
	return ch, nil
}
