package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists products to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a store at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database lives per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			run_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (run_id, event_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_products_run_number
		ON products(run_id, number, event_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(runID, eventID string, number uint64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO products (run_id, event_id, number, timestamp, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, event_id) DO UPDATE SET
			number = excluded.number,
			timestamp = excluded.timestamp,
			data = excluded.data
	`, runID, eventID, int64(number), time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(runID, eventID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM products
		WHERE run_id = ? AND event_id = ?
	`, runID, eventID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return data, nil
}

// List implements Store.
func (s *SQLiteStore) List(runID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, number, timestamp, LENGTH(data)
		FROM products
		WHERE run_id = ?
		ORDER BY number, event_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info := Info{RunID: runID}
		var (
			ts     string
			number int64
		)
		if err := rows.Scan(&info.EventID, &number, &ts, &info.Size); err != nil {
			return nil, fmt.Errorf("scan products info: %w", err)
		}
		info.Number = uint64(number)
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return infos, nil
}

// Runs returns the distinct run IDs in the store.
func (s *SQLiteStore) Runs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT DISTINCT run_id FROM products ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM products WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run products: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
