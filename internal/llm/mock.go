package llm

import "context"

// MockProvider replays a fixed sequence of events, for tests. It records each
// request so tests can assert on history and prompts.
type MockProvider struct {
	Events   []Event
	StartErr error
	Requests []Request
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return "mock"
}

// StreamChat replays the configured events. Returns StartErr when set.
func (m *MockProvider) StreamChat(ctx context.Context, req Request) (<-chan Event, error) {
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	m.Requests = append(m.Requests, req)
	events := make(chan Event)
	go func() {
		defer close(events)
		for _, ev := range m.Events {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
