// Package persistence stores colony history in SQLite: every build
// directive the scheduler issued, the latest cycle's assignments, events
// and run metadata.
package persistence

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/colony/internal/engine"
)

// DB wraps a SQLite connection for colony history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS directives (
		id TEXT PRIMARY KEY,
		cycle INTEGER NOT NULL,
		facility TEXT NOT NULL,
		home TEXT NOT NULL,
		role TEXT NOT NULL,
		reps INTEGER NOT NULL,
		target TEXT NOT NULL,
		stage TEXT NOT NULL,
		renew INTEGER NOT NULL,
		spawned INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		agent_id TEXT PRIMARY KEY,
		cycle INTEGER NOT NULL,
		room TEXT NOT NULL,
		category TEXT NOT NULL,
		target TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle INTEGER NOT NULL,
		territory TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS colony_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_cycle ON events(cycle);
	CREATE INDEX IF NOT EXISTS idx_directives_cycle ON directives(cycle);
	CREATE INDEX IF NOT EXISTS idx_directives_role ON directives(role);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveDirectives appends build records to the directive history.
func (db *DB) SaveDirectives(records []engine.BuildRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO directives
		(id, cycle, facility, home, role, reps, target, stage, renew, spawned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.ID, r.Cycle, r.Facility, r.Home, r.Role, r.Reps, r.Target, r.Stage,
			boolInt(r.Renew), boolInt(r.Spawned),
		); err != nil {
			return fmt.Errorf("directive %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// SaveAssignments replaces the stored assignments with the given cycle's.
func (db *DB) SaveAssignments(records []engine.AssignmentRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assignments"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO assignments
		(agent_id, cycle, room, category, target) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Agent, r.Cycle, r.Room, r.Category, r.Target); err != nil {
			return fmt.Errorf("assignment %s: %w", r.Agent, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.NamedExec(
			`INSERT INTO events (cycle, territory, category, description)
			VALUES (:cycle, :territory, :category, :description)`, e)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in colony metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO colony_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM colony_meta WHERE key = ?", key)
	return value, err
}

// LastCycle returns the last saved cycle, 0 when none was saved.
func (db *DB) LastCycle() uint64 {
	v, err := db.GetMeta("last_cycle")
	if err != nil {
		return 0
	}
	n, _ := strconv.ParseUint(v, 10, 64)
	return n
}

// SaveColonyState drains the colony's history and stores it with the
// latest assignments.
func (db *DB) SaveColonyState(c *engine.Colony) error {
	builds, events := c.Drain()
	slog.Info("saving colony state", "cycle", c.Cycle(), "directives", len(builds), "events", len(events))

	if err := db.SaveDirectives(builds); err != nil {
		return fmt.Errorf("save directives: %w", err)
	}
	if err := db.SaveAssignments(c.Assignments()); err != nil {
		return fmt.Errorf("save assignments: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_cycle", strconv.FormatUint(c.Cycle(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("colony state saved")
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT cycle, territory, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// RecentDirectives returns the most recent N build records, newest first.
func (db *DB) RecentDirectives(limit int) ([]engine.BuildRecord, error) {
	var records []engine.BuildRecord
	err := db.conn.Select(&records,
		`SELECT id, cycle, facility, home, role, reps, target, stage, renew, spawned
		FROM directives ORDER BY cycle DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return records, err
}

// Assignments returns the stored assignments ordered by agent.
func (db *DB) Assignments() ([]engine.AssignmentRecord, error) {
	var records []engine.AssignmentRecord
	err := db.conn.Select(&records,
		"SELECT agent_id AS agent, cycle, room, category, target FROM assignments ORDER BY agent_id",
	)
	return records, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
