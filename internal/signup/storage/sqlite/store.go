package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/gamenight/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gamenight/internal/signup/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists signup state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite signup store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Reset drops every signup table and replays the schema migrations. This is
// the destructive administrative operation, not a migration.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS table_message",
		"DROP TABLE IF EXISTS table_player",
		"DROP TABLE IF EXISTS guild_role",
		"DROP TABLE IF EXISTS game_table",
		"DROP TABLE IF EXISTS event",
		"DROP TABLE IF EXISTS message",
		"DROP TABLE IF EXISTS game",
		"DROP TABLE IF EXISTS player",
		"DROP TABLE IF EXISTS guild",
	}
	for _, drop := range drops {
		if _, err := tx.ExecContext(ctx, drop); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reset storage: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}

	if err := sqlitemigrate.ClearRecords(s.sqlDB); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS); err != nil {
		return fmt.Errorf("reinitialize storage: %w", err)
	}
	return nil
}

func (s *Store) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so hydration helpers can
// run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
