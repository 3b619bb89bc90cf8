package backend

import (
	"context"
	"fmt"
	"sync"
)

// Call records one request made against a MockAPI.
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Form   any
}

// MockAPI is an in-memory API for tests. Bodies maps a list path to the JSON
// it answers with; Errors maps "METHOD path" to a failure.
type MockAPI struct {
	Bodies map[string]string
	Errors map[string]error

	mu    sync.Mutex
	calls []Call
}

func (m *MockAPI) record(c Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	if err, ok := m.Errors[c.Method+" "+c.Path]; ok {
		return err
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockAPI) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockAPI) List(_ context.Context, path string, query map[string]string) ([]byte, error) {
	if err := m.record(Call{Method: "GET", Path: path, Query: query}); err != nil {
		return nil, err
	}
	body, ok := m.Bodies[path]
	if !ok {
		return nil, fmt.Errorf("GET %s: no mock body", path)
	}
	return []byte(body), nil
}

func (m *MockAPI) PostForm(_ context.Context, path string, v any) error {
	return m.record(Call{Method: "POST", Path: path, Form: v})
}

func (m *MockAPI) Delete(_ context.Context, path string) error {
	return m.record(Call{Method: "DELETE", Path: path})
}
