// Package kv implements the sqlkv engine: JSON values addressed by string
// keys, optional per-entry TTL, wildcard lookup and a background expiry sweep
// over a SQLite storage handle.
package kv

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/sqlkv/internal/db"
)

// NoExpiry is the stored ttl of an entry that never expires.
const NoExpiry int64 = -1

// DefaultSweepInterval is how often expired rows are physically removed.
const DefaultSweepInterval = 60 * time.Second

var errWildcardKey = errors.New("'" + Wildcard + "' in keys is not permitted")

// An entry is expired iff it has a ttl and now (ms) has reached
// timestamp + ttl seconds. Reads select the exact negation, so reads and the
// sweep can never disagree.
const (
	expiredClause = `(ttl <> -1 AND ? >= timestamp + ttl * 1000)`
	liveClause    = `NOT ` + expiredClause

	selectColumns = `SELECT key, value, ttl, timestamp FROM kv`

	selectExactSQL   = selectColumns + ` WHERE key = ? AND ` + liveClause
	selectPatternSQL = selectColumns + ` WHERE key LIKE ? ESCAPE '` + likeEscape + `' AND ` + liveClause + ` ORDER BY key`

	upsertSQL = `
		INSERT INTO kv (key, value, ttl, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			ttl = excluded.ttl,
			timestamp = excluded.timestamp`

	sweepSQL = `DELETE FROM kv WHERE ` + expiredClause
)

// Handle is the storage primitive the engine runs on. *db.DB satisfies it.
type Handle interface {
	Execute(ctx context.Context, stmt string, args ...any) (int64, error)
	QueryAll(ctx context.Context, stmt string, args ...any) ([]db.Row, error)
}

// Entry is a stored value with its metadata.
type Entry struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	TTL       int64     `json:"ttl"`       // Seconds, NoExpiry if the entry never expires
	Timestamp time.Time `json:"timestamp"` // Last write

	raw string
}

// ExpiresAt returns when the entry expires, false if it never does.
func (e Entry) ExpiresAt() (time.Time, bool) {
	if e.TTL == NoExpiry {
		return time.Time{}, false
	}
	return e.Timestamp.Add(time.Duration(e.TTL) * time.Second), true
}

// Decode decodes the stored value into dest.
func (e Entry) Decode(dest any) error {
	return DecodeInto(e.raw, dest)
}

// Result is the outcome of a Get. A wildcard lookup always yields a (possibly
// empty) sequence; an exact lookup yields zero or one entry.
type Result struct {
	entries  []Entry
	multi    bool
	metadata bool
}

// Found reports whether at least one live entry matched.
func (r Result) Found() bool { return len(r.entries) > 0 }

// IsMulti reports whether the lookup was a wildcard pattern.
func (r Result) IsMulti() bool { return r.multi }

// Len returns the number of matched entries.
func (r Result) Len() int { return len(r.entries) }

// Value returns the first matched value, nil if nothing matched.
func (r Result) Value() any {
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[0].Value
}

// Values returns every matched value in key order.
func (r Result) Values() []any {
	values := make([]any, len(r.entries))
	for i, e := range r.entries {
		values[i] = e.Value
	}
	return values
}

// Entry returns the first matched entry.
func (r Result) Entry() (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[0], true
}

// Entries returns every matched entry in key order.
func (r Result) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Any returns the result in the shape the lookup asked for:
//
//	exact,    no metadata: value, or nil when not found
//	exact,    metadata:    Entry, or nil when not found
//	wildcard, no metadata: []any
//	wildcard, metadata:    []Entry
func (r Result) Any() any {
	switch {
	case r.multi && r.metadata:
		return r.Entries()
	case r.multi:
		return r.Values()
	case !r.Found():
		return nil
	case r.metadata:
		return r.entries[0]
	default:
		return r.entries[0].Value
	}
}

// GetOption configures a Get.
type GetOption func(*getOptions)

type getOptions struct {
	metadata bool
}

// WithMetadata makes Result.Any return entries instead of bare values.
func WithMetadata() GetOption {
	return func(o *getOptions) { o.metadata = true }
}

// SetOption configures a Set.
type SetOption func(*setOptions)

type setOptions struct {
	ttl int64
}

// WithTTL expires the entry the given number of seconds after this write.
// Zero expires it immediately; a negative value means no expiry.
func WithTTL(seconds int64) SetOption {
	return func(o *setOptions) {
		if seconds < 0 {
			seconds = NoExpiry
		}
		o.ttl = seconds
	}
}

// Store is a key-value store over a single storage handle. It is safe for
// concurrent use.
type Store struct {
	id     string
	handle Handle
	closer io.Closer
	clock  func() time.Time
	logger zerolog.Logger

	sweeper   *Sweeper
	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the database at path and returns a store that owns
// it. Use db.MemoryPath for an in-memory store.
func Open(path string, opts ...Option) (*Store, error) {
	o := newOptions(opts)

	database, err := db.Open(path, db.Options{
		Driver:      o.driver,
		BusyTimeout: o.busyTimeout,
	})
	if err != nil {
		return nil, err
	}

	s := newStore(database, o)
	s.closer = database
	s.logger.Debug().
		Str("path", path).
		Str("driver", database.Driver()).
		Msg("Opened KV store")

	s.start(o)
	return s, nil
}

// New returns a store over an existing handle. Closing the store does not
// close the handle.
func New(h Handle, opts ...Option) *Store {
	o := newOptions(opts)
	s := newStore(h, o)
	s.start(o)
	return s
}

func newStore(h Handle, o options) *Store {
	id := uuid.NewString()
	logger := o.logger
	if logger == nil {
		l := log.With().Str("cmp", "kv").Logger()
		logger = &l
	}

	return &Store{
		id:     id,
		handle: h,
		clock:  o.clock,
		logger: logger.With().Str("store", id).Logger(),
	}
}

func (s *Store) start(o options) {
	if o.sweep {
		s.sweeper = StartSweeper(s, o.sweepInterval, s.logger)
	}
}

// ID returns the instance id attached to this store's log lines.
func (s *Store) ID() string {
	return s.id
}

func (s *Store) now() int64 {
	return s.clock().UnixMilli()
}

// Get looks up an exact key, or every key matching a pattern containing
// Wildcard. Expired entries are never returned, whether or not they have been
// swept yet. A missing exact key is not an error: the result is not Found.
func (s *Store) Get(ctx context.Context, key string, opts ...GetOption) (Result, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	pattern, multi := Translate(key)
	stmt := selectExactSQL
	if multi {
		stmt = selectPatternSQL
	}

	rows, err := s.handle.QueryAll(ctx, stmt, pattern, s.now())
	if err != nil {
		return Result{}, newError("get", key, ErrQuery, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		value, err := Decode(row.Value)
		if err != nil {
			return Result{}, newError("get", row.Key, ErrDecode, err)
		}
		entries = append(entries, Entry{
			Key:       row.Key,
			Value:     value,
			TTL:       row.TTL,
			Timestamp: time.UnixMilli(row.Timestamp),
			raw:       row.Value,
		})
	}

	return Result{entries: entries, multi: multi, metadata: o.metadata}, nil
}

// GetInto decodes the value stored under an exact key into dest and reports
// whether it was found. For a wildcard pattern dest receives a JSON array of
// every matched value in key order.
func (s *Store) GetInto(ctx context.Context, key string, dest any) (bool, error) {
	res, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}

	if !res.multi {
		if !res.Found() {
			return false, nil
		}
		if err := res.entries[0].Decode(dest); err != nil {
			return false, newError("get", key, ErrDecode, err)
		}
		return true, nil
	}

	raws := make([]string, len(res.entries))
	for i, e := range res.entries {
		raws[i] = e.raw
	}
	if err := DecodeInto("["+strings.Join(raws, ",")+"]", dest); err != nil {
		return false, newError("get", key, ErrDecode, err)
	}
	return res.Found(), nil
}

// Set writes value under key, replacing any existing entry. The entry's ttl
// and timestamp are always reset: without WithTTL the entry never expires,
// even if it previously had a ttl.
func (s *Store) Set(ctx context.Context, key string, value any, opts ...SetOption) error {
	o := setOptions{ttl: NoExpiry}
	for _, opt := range opts {
		opt(&o)
	}
	return s.set(ctx, "set", key, value, o.ttl)
}

// Delete tombstones key by overwriting it with a zero ttl, which the read
// predicate treats as expired immediately. The row is physically removed by
// the next sweep. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.set(ctx, "delete", key, nil, 0)
}

func (s *Store) set(ctx context.Context, op, key string, value any, ttl int64) error {
	if IsPattern(key) {
		return newError(op, key, ErrInvalidKey, errWildcardKey)
	}

	text, err := Encode(value)
	if err != nil {
		return newError(op, key, ErrWrite, err)
	}

	if _, err := s.handle.Execute(ctx, upsertSQL, key, text, ttl, s.now()); err != nil {
		return newError(op, key, ErrWrite, err)
	}
	return nil
}

// Sweep deletes every expired row and returns how many were removed. A row
// rewritten with a fresh ttl before the delete statement runs is not expired
// and survives.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	n, err := s.handle.Execute(ctx, sweepSQL, s.now())
	if err != nil {
		return 0, newError("sweep", "", ErrWrite, err)
	}
	return n, nil
}

// Quit stops the background sweeper. An in-flight sweep is allowed to finish.
// Quit is idempotent.
func (s *Store) Quit() {
	s.sweeper.Stop()
}

// Close quits the sweeper and closes the storage handle if the store opened
// it.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.Quit()
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
		s.logger.Debug().Msg("Closed KV store")
	})
	return s.closeErr
}
