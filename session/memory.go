package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/armatrix/toolgate"
)

// Store is a readable call-record log. All implementations also satisfy
// toolgate.Recorder for the write side.
type Store interface {
	toolgate.Recorder
	List(ctx context.Context, sessionID string) ([]toolgate.CallRecord, error)
}

// MemoryStore is an in-memory record log backed by a mutex-protected
// map keyed by session ID.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]toolgate.CallRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]toolgate.CallRecord)}
}

// Append adds a record to its session's log.
func (m *MemoryStore) Append(_ context.Context, rec toolgate.CallRecord) error {
	if rec.SessionID == "" {
		return fmt.Errorf("session: record has no session ID")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.SessionID] = append(m.records[rec.SessionID], rec)
	return nil
}

// List returns the session's records in append order. Unknown sessions
// yield an empty slice.
func (m *MemoryStore) List(_ context.Context, sessionID string) ([]toolgate.CallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.records[sessionID]
	out := make([]toolgate.CallRecord, len(recs))
	copy(out, recs)
	return out, nil
}
