package storage

import (
	"context"
	"io/fs"
	"sync"
)

// Memory keeps the document in memory. It is meant for tests and for
// ephemeral servers.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	exists bool
	writes int

	// ReadErr and WriteErr, when set, are returned by Read and Write.
	ReadErr  error
	WriteErr error
}

// NewMemory returns a Memory backend. A nil document means it does not exist.
func NewMemory(document []byte) *Memory {
	m := &Memory{}
	if document != nil {
		m.data = append([]byte(nil), document...)
		m.exists = true
	}
	return m
}

func (m *Memory) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if !m.exists {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.writes++
	return nil
}

// Document returns the current document, nil if it does not exist.
func (m *Memory) Document() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
