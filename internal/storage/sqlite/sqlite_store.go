package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/brk3/habitcal/internal/storage"
	"github.com/brk3/habitcal/pkg/habit"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	user_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	value   TEXT NOT NULL,
	PRIMARY KEY (user_id, name)
)`

// Store is a Cache backed by a single key/value table in SQLite.
type Store struct {
	db     *sql.DB
	userID string
}

func Open(path, userID string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	if userID == "" {
		userID = "default"
	}
	return &Store{db: db, userID: userID}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load() (habit.Snapshot, bool, error) {
	rows, err := s.db.Query(`SELECT name, value FROM cache_entries WHERE user_id = ?`, s.userID)
	if err != nil {
		return habit.Snapshot{}, false, fmt.Errorf("reading cache: %w", err)
	}
	defer rows.Close()

	var snap habit.Snapshot
	found := false
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return habit.Snapshot{}, false, err
		}
		switch name {
		case storage.HabitsKey:
			err = json.Unmarshal([]byte(value), &snap.Habits)
		case storage.LogsKey:
			err = json.Unmarshal([]byte(value), &snap.Logs)
		default:
			continue
		}
		if err != nil {
			return habit.Snapshot{}, false, fmt.Errorf("decode %s: %w", name, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return habit.Snapshot{}, false, err
	}
	return snap, found, nil
}

func (s *Store) Save(snap habit.Snapshot) error {
	habits := snap.Habits
	if habits == nil {
		habits = []habit.Habit{}
	}
	logs := snap.Logs
	if logs == nil {
		logs = []habit.Log{}
	}
	habitsJSON, err := json.Marshal(habits)
	if err != nil {
		return err
	}
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO cache_entries (user_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, s.userID, storage.HabitsKey, string(habitsJSON)); err != nil {
		return fmt.Errorf("writing %s: %w", storage.HabitsKey, err)
	}
	if _, err := tx.Exec(upsert, s.userID, storage.LogsKey, string(logsJSON)); err != nil {
		return fmt.Errorf("writing %s: %w", storage.LogsKey, err)
	}
	return tx.Commit()
}

var _ storage.Cache = (*Store)(nil)
