// Package history persists completed moves to a local sqlite3 database for
// after-the-fact inspection. It implements aline.HistorySink: the planner
// only ever writes to it, through Machine.SetHistorySink, and never reads it
// back — replanning decisions must never depend on what happened to a move
// after it retired.
//
// Grounded on the teacher's flush-to-sqlite pattern (sql.Open("sqlite3", ...)
// behind the mattn/go-sqlite3 driver, blank-imported for its side effect of
// registering the driver name).
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"aline-planner/pkg/aline"
	"aline-planner/pkg/log"
)

// Store is a sqlite3-backed aline.HistorySink.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open creates or attaches to a sqlite3 database at path and ensures the
// moves table exists.
func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS moves (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	move_type      TEXT NOT NULL,
	start_velocity REAL NOT NULL,
	end_velocity   REAL NOT NULL,
	length         REAL NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordFinalized implements aline.HistorySink: it is called once per
// buffer the dispatcher finalizes, from the same goroutine that runs the
// planner's Step loop, so no locking is needed on the write path here.
func (s *Store) RecordFinalized(moveType aline.MoveType, startVelocity, endVelocity, length float64) {
	_, err := s.db.Exec(
		`INSERT INTO moves (move_type, start_velocity, end_velocity, length) VALUES (?, ?, ?, ?)`,
		moveType.String(), startVelocity, endVelocity, length,
	)
	if err != nil && s.logger != nil {
		s.logger.Warn("history: insert failed", log.Fields{"error": err.Error()})
	}
}

// Count returns the total number of recorded moves, for tests and the demo
// cmd/ entrypoint's summary output.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM moves`).Scan(&n)
	return n, err
}

// RecentMoveTypes returns the move types of the last n recorded moves,
// most recent first.
func (s *Store) RecentMoveTypes(n int) ([]string, error) {
	rows, err := s.db.Query(`SELECT move_type FROM moves ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var mt string
		if err := rows.Scan(&mt); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}
