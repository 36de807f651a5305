// Package archive persists pickled values in a SQLite database, keyed by
// name.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chazu/mozart/vm"
	"github.com/chazu/mozart/vm/pickle"
)

// ErrNotFound indicates the requested key doesn't exist
var ErrNotFound = errors.New("archive: key not found")

// Entry describes one archived value.
type Entry struct {
	Key      string
	RootType string
	SavedAt  time.Time
}

// Archive handles SQLite storage for pickles
type Archive struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pickles (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		root_type TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Archive{db: db, path: path}, nil
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the database connection
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Save pickles v and stores it under key, replacing any previous value.
func (a *Archive) Save(m *vm.VM, key string, v vm.Value) error {
	data, err := pickle.Marshal(m, v)
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	root, _ := m.Deref(v)

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.db.Exec(
		"INSERT OR REPLACE INTO pickles (key, data, root_type, saved_at) VALUES (?, ?, ?, ?)",
		key, data, m.TypeOf(root).Name(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	return nil
}

// Load retrieves the value stored under key and rebuilds it in m.
func (a *Archive) Load(m *vm.VM, key string) (vm.Value, error) {
	var data []byte
	err := a.db.QueryRow("SELECT data FROM pickles WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vm.Unit, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return vm.Unit, fmt.Errorf("querying %q: %w", key, err)
	}
	v, err := pickle.Unmarshal(m, data)
	if err != nil {
		return vm.Unit, fmt.Errorf("loading %q: %w", key, err)
	}
	return v, nil
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (a *Archive) Delete(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.db.Exec("DELETE FROM pickles WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

// Keys returns all keys in sorted order.
func (a *Archive) Keys() ([]string, error) {
	entries, err := a.Entries()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// Entries lists every archived value, sorted by key.
func (a *Archive) Entries() ([]Entry, error) {
	rows, err := a.db.Query("SELECT key, root_type, saved_at FROM pickles ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Key, &e.RootType, &ts); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.SavedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
