// Package sqlkv is an embedded key-value store for JSON values backed by a
// single SQLite file.
//
// Entries may carry a time-to-live in seconds. Expired entries are invisible
// to every read from the instant they expire and are physically removed by a
// background sweep that each Store runs on its own schedule. Keys containing
// "*" are lookup patterns: "*" matches any sequence of characters and every
// other character, including SQL LIKE metacharacters, matches itself.
//
//	store, err := sqlkv.Open("app.db")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	_ = store.Set(ctx, "session:42", token, sqlkv.WithTTL(3600))
//	res, _ := store.Get(ctx, "session:*")
//	for _, v := range res.Values() { ... }
package sqlkv

import (
	"github.com/dokzlo13/sqlkv/internal/db"
	"github.com/dokzlo13/sqlkv/internal/kv"
)

type (
	// Store is an open key-value store.
	Store = kv.Store
	// Entry is a stored value with its key, ttl and last-write timestamp.
	Entry = kv.Entry
	// Result is the outcome of Store.Get.
	Result = kv.Result
	// Error is a failed store operation; match its kind with errors.Is.
	Error = kv.Error

	Option    = kv.Option
	GetOption = kv.GetOption
	SetOption = kv.SetOption
)

// Future is the pending result of an async store call.
type Future[T any] = kv.Future[T]

// Error kinds.
var (
	ErrInvalidKey = kv.ErrInvalidKey
	ErrQuery      = kv.ErrQuery
	ErrWrite      = kv.ErrWrite
	ErrDecode     = kv.ErrDecode
)

const (
	// Memory is the path of a private in-memory store.
	Memory = db.MemoryPath
	// NoExpiry is the ttl reported for entries that never expire.
	NoExpiry = kv.NoExpiry
	// Wildcard matches any sequence of characters in a lookup key.
	Wildcard = kv.Wildcard

	// DriverCGO selects github.com/mattn/go-sqlite3 (the default).
	DriverCGO = db.DriverMattn
	// DriverPureGo selects modernc.org/sqlite.
	DriverPureGo = db.DriverModernc
)

// Open opens (or creates) the store at path and starts its expiry sweeper.
func Open(path string, opts ...Option) (*Store, error) {
	return kv.Open(path, opts...)
}

// Store options.
var (
	WithDriver        = kv.WithDriver
	WithBusyTimeout   = kv.WithBusyTimeout
	WithClock         = kv.WithClock
	WithLogger        = kv.WithLogger
	WithSweepInterval = kv.WithSweepInterval
	WithoutSweeper    = kv.WithoutSweeper
)

// Per-call options.
var (
	WithTTL      = kv.WithTTL
	WithMetadata = kv.WithMetadata
)
