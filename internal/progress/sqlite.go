package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// recordName is the key of the single progress row.
const recordName = "user-progress"

const schema = `CREATE TABLE IF NOT EXISTS records (
	name       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// sqliteStore keeps the record as a JSON document in one named row.
type sqliteStore struct {
	db      *sql.DB
	timeout time.Duration
}

func openSQLite(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA journal_mode = WAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &sqliteStore{db: db, timeout: 10 * time.Second}, nil
}

func (s *sqliteStore) Load() (*UserProgress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE name = ?`, recordName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return decode([]byte(data))
}

func (s *sqliteStore) Save(p *UserProgress) error {
	data, err := encode(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		recordName, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	return nil
}

func (s *sqliteStore) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE name = ?`, recordName); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
