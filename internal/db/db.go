// Package db provides the SQLite storage handle and schema for sqlkv.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverModernc = "sqlite"  // modernc.org/sqlite (pure Go)
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const defaultBusyTimeout = 5 * time.Second

// Options configures how the database is opened.
type Options struct {
	Driver      string        // DriverMattn (default) or DriverModernc
	BusyTimeout time.Duration // How long a statement waits on a locked database
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Driver:      DriverMattn,
		BusyTimeout: defaultBusyTimeout,
	}
}

// Row is a single persisted entry as stored in the kv table.
type Row struct {
	Key       string
	Value     string // Serialized value
	TTL       int64  // Seconds, or -1 for no expiry
	Timestamp int64  // Last write, Unix milliseconds
}

// DB wraps the SQLite database connection
type DB struct {
	conn   *sql.DB
	driver string
}

// Open opens the database and initializes the schema
func Open(path string, opts Options) (*DB, error) {
	if opts.Driver == "" {
		opts.Driver = DriverMattn
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}

	dsn, err := buildDSN(path, opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database a single database and
	// lets SQLite serialize every statement issued through this handle.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn, driver: opts.Driver}, nil
}

// buildDSN appends the driver-specific pragmas to path.
func buildDSN(path string, opts Options) (string, error) {
	if path == "" {
		return "", fmt.Errorf("database path is empty")
	}

	busyMillis := opts.BusyTimeout.Milliseconds()

	var params []string
	switch opts.Driver {
	case DriverMattn:
		params = []string{
			"_journal_mode=WAL",
			fmt.Sprintf("_busy_timeout=%d", busyMillis),
			"_case_sensitive_like=true",
		}
	case DriverModernc:
		params = []string{
			"_pragma=journal_mode(WAL)",
			fmt.Sprintf("_pragma=busy_timeout(%d)", busyMillis),
			"_pragma=case_sensitive_like(1)",
		}
	default:
		return "", fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&"), nil
}

// initSchema creates all required tables
func initSchema(conn *sql.DB) error {
	// KV store - one row per key; ttl is seconds (-1 = never expires),
	// timestamp is the last write in Unix milliseconds
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			ttl INTEGER NOT NULL DEFAULT -1,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_kv_expiring ON kv(timestamp, ttl) WHERE ttl <> -1;
	`)
	if err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}

	return nil
}

// Driver returns the database/sql driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// Execute runs a non-query statement and returns the number of affected rows.
func (db *DB) Execute(ctx context.Context, stmt string, args ...any) (int64, error) {
	result, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// QueryAll runs a read query selecting (key, value, ttl, timestamp) and
// returns every row.
func (db *DB) QueryAll(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Key, &row.Value, &row.TTL, &row.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
