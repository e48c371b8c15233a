package api

import (
	"context"
	"sync"
)

// MockAssistantClient is a mock implementation of AssistantClient for testing
type MockAssistantClient struct {
	mu sync.Mutex

	// Configurable return values
	Reply       string
	Err         error
	EndpointVal string

	// Call tracking
	Calls     int
	LastQuery string
	Queries   []string
}

// Ask records the query and returns the configured reply or error
func (m *MockAssistantClient) Ask(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastQuery = query
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Endpoint returns the configured endpoint
func (m *MockAssistantClient) Endpoint() string {
	if m.EndpointVal == "" {
		return "http://mock/chat"
	}
	return m.EndpointVal
}

// CallCount returns how many queries were sent
func (m *MockAssistantClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// Ensure MockAssistantClient implements AssistantClient
var _ AssistantClient = (*MockAssistantClient)(nil)
var _ AssistantClient = (*Client)(nil)
