package session

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Adapter persists the whole session collection as one value under a fixed
// key. Load degrades to an empty collection when nothing was stored yet or
// the stored value cannot be deserialized; Save overwrites the prior value.
type Adapter interface {
	Load() ([]*Session, error)
	Save(sessions []*Session) error
}

// MemoryStore is an in-memory Adapter. It serializes on Save like the real
// store so round-trip behavior matches.
type MemoryStore struct {
	mu        sync.Mutex
	data      []byte
	saveCount int
	saveErr   error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailSavesWith makes every subsequent Save return err.
func (m *MemoryStore) FailSavesWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SaveCount returns how many times Save was called.
func (m *MemoryStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCount
}

// Load implements Adapter.
func (m *MemoryStore) Load() ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	var sessions []*Session
	if err := json.Unmarshal(m.data, &sessions); err != nil {
		return nil, nil
	}
	return sessions, nil
}

// Save implements Adapter.
func (m *MemoryStore) Save(sessions []*Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCount++
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}
	m.data = data
	return nil
}
