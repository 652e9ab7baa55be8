// Package store persists the products handed off for each processed event.
package store

import (
	"encoding/json"
	"errors"
	"time"
)

// Store persists per-event products.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the products of one event in a run. number is the
	// event's position in its input and orders List.
	// Overwrites if an entry for (runID, eventID) already exists.
	Save(runID, eventID string, number uint64, data []byte) error

	// Load retrieves an event's products.
	// Returns ErrNotFound if the entry doesn't exist.
	Load(runID, eventID string) ([]byte, error)

	// List returns all entries of a run, ordered by number then event ID.
	// Returns empty slice (not error) if the run has no entries.
	List(runID string) ([]Info, error)

	// DeleteRun removes all entries of a run.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without loading the products.
type Info struct {
	RunID     string
	EventID   string
	Number    uint64
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("products not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("products store closed")
)

// Version is the current record format version.
const Version = 1

// Record is the persisted envelope around one event's products.
type Record struct {
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	EventID   string          `json:"event_id"`
	Timestamp time.Time       `json:"timestamp"`
	Products  json.RawMessage `json:"products"`
}

// NewRecord wraps already-serialized products.
func NewRecord(runID, eventID string, products []byte) *Record {
	return &Record{
		Version:   Version,
		RunID:     runID,
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Products:  products,
	}
}

// Marshal serializes a record to JSON.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a record from JSON.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
