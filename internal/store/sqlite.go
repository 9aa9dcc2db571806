package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SchemaVersion is the schema the SQLite store migrates to.
const SchemaVersion = 2

type migration struct {
	version     int
	description string
	up          func(*sql.Tx) error
}

var migrations = []migration{
	{
		version:     1,
		description: "Device key-value table",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS kv (
				device_id TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				PRIMARY KEY (device_id, key)
			)`)
			return err
		},
	},
	{
		version:     2,
		description: "Track last write per key",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE kv ADD COLUMN updated_at DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00'`,
				`CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// SQLiteStore keeps every device's keys in one SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

func (s *SQLiteStore) Device(id string) (KV, error) {
	if id == "" {
		return nil, ErrInvalidDeviceID
	}
	return &sqliteKV{db: s.db, id: id}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Cleanup removes every key of devices whose newest write is older than
// maxAge and returns the number of keys removed.
func (s *SQLiteStore) Cleanup(maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.DateTime)
	res, err := s.db.Exec(`DELETE FROM kv WHERE device_id IN (
		SELECT device_id FROM kv GROUP BY device_id HAVING MAX(updated_at) < ?
	)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up devices: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type sqliteKV struct {
	db *sql.DB
	id string
}

func (kv *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := kv.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE device_id = ? AND key = ?`, kv.id, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

func (kv *sqliteKV) Set(ctx context.Context, key, value string) error {
	_, err := kv.db.ExecContext(ctx, `INSERT INTO kv (device_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kv.id, key, value, time.Now().UTC().Format(time.DateTime))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (kv *sqliteKV) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := kv.db.ExecContext(ctx,
			`DELETE FROM kv WHERE device_id = ? AND key = ?`, kv.id, k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	return nil
}
