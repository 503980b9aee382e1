package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the SQL database connection of one store file
type DB struct {
	*sql.DB
	path string
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stint"
	}
	return filepath.Join(home, ".local", "share", "stint")
}

// DefaultDBPath returns the default store file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "stint.db")
}

// Exists reports whether a store file is present at path
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open opens a store file and brings its schema up to date.
// The file is created if it does not exist.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: dbPath}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenReadOnly opens an existing store file for reading. The schema is not
// migrated and nothing is written to the file.
func OpenReadOnly(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: sqlDB, path: dbPath}, nil
}

// Path returns the store file path
func (db *DB) Path() string {
	return db.path
}

// migrate runs database migrations using embedded SQL files
func (db *DB) migrate() error {
	// goose logs to stdout, which belongs to the TUI
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// Timestamp layouts found in store files. The first is what go-sqlite3
// writes; the rest cover rows written by older versions of the tracker.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// asTime converts a scanned DATETIME value. Rows written by hand or by old
// versions may hold text such as "None"; those yield nil.
func asTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		// go-sqlite3 yields the zero time for unparseable DATETIME text
		if t.IsZero() {
			return nil
		}
		return &t
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	}
	return nil
}

func parseTime(s string) *time.Time {
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &parsed
		}
	}
	return nil
}

// nullTime converts an optional timestamp for writing
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
