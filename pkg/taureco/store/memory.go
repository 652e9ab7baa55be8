package store

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps products in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[string]entry // runID -> eventID -> entry
	closed bool
}

type entry struct {
	data      []byte
	number    uint64
	timestamp time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]map[string]entry),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(runID, eventID string, number uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.runs[runID] == nil {
		m.runs[runID] = make(map[string]entry)
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	m.runs[runID][eventID] = entry{
		data:      stored,
		number:    number,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID, eventID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	e, ok := m.runs[runID][eventID]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run := m.runs[runID]
	infos := make([]Info, 0, len(run))
	for eventID, e := range run {
		infos = append(infos, Info{
			RunID:     runID,
			EventID:   eventID,
			Number:    e.number,
			Timestamp: e.timestamp,
			Size:      int64(len(e.data)),
		})
	}
	slices.SortFunc(infos, func(a, b Info) int {
		return cmp.Or(cmp.Compare(a.Number, b.Number), cmp.Compare(a.EventID, b.EventID))
	})
	return infos, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.runs = nil
	return nil
}
