// Package store keeps named grid snapshots in a sqlite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"toruslife/src/universe"
)

// ErrNotFound is returned when no snapshot matches the lookup.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id   TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	width         INTEGER NOT NULL,
	height        INTEGER NOT NULL,
	generation    INTEGER NOT NULL,
	live_cells    INTEGER NOT NULL,
	grid_json     BLOB NOT NULL,
	created_at_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots (name, created_at_ns);
`

// Snapshot describes a stored grid. The grid itself is kept in the codec
// format and decoded on Load.
type Snapshot struct {
	ID          string
	Name        string
	Width       int
	Height      int
	Generation  uint64
	LiveCells   int
	CreatedAtNs int64
}

// Store provides persistence for grid snapshots.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}
	universe.Logf("store: opened %s", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the current buffer of g under name. Names are not unique,
// every call creates a new snapshot.
func (s *Store) Save(name string, g *universe.Grid) (Snapshot, error) {
	data, err := universe.Encode(g)
	if err != nil {
		return Snapshot{}, err
	}
	w, h := g.Dimensions()
	snap := Snapshot{
		ID:          uuid.New().String(),
		Name:        name,
		Width:       w,
		Height:      h,
		Generation:  g.Generation(),
		LiveCells:   g.LiveCells(),
		CreatedAtNs: time.Now().UnixNano(),
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (
			snapshot_id, name, width, height, generation, live_cells, grid_json, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.Width, snap.Height, int64(snap.Generation), snap.LiveCells, data, snap.CreatedAtNs,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// Load decodes the snapshot with the given id.
func (s *Store) Load(id string) (*universe.Grid, error) {
	return s.loadRow(s.db.QueryRow(`SELECT grid_json FROM snapshots WHERE snapshot_id = ?`, id), id)
}

// LoadByName decodes the most recent snapshot saved under name.
func (s *Store) LoadByName(name string) (*universe.Grid, error) {
	row := s.db.QueryRow(`
		SELECT grid_json FROM snapshots
		WHERE name = ?
		ORDER BY created_at_ns DESC
		LIMIT 1`, name)
	return s.loadRow(row, name)
}

// List returns all snapshots, newest first.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, name, width, height, generation, live_cells, created_at_ns
		FROM snapshots
		ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var gen int64
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Width, &snap.Height, &gen, &snap.LiveCells, &snap.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Generation = uint64(gen)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot with the given id.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM snapshots WHERE snapshot_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) loadRow(row *sql.Row, key string) (*universe.Grid, error) {
	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	g, err := universe.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return g, nil
}
