package db

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// IsBusy returns true if err is a SQLITE_BUSY (or extended busy) error from
// either supported driver.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}

	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.Code == sqlite3.ErrBusy
	}

	var modernErr *sqlite.Error
	if errors.As(err, &modernErr) {
		return modernErr.Code()&0xff == sqlitelib.SQLITE_BUSY
	}

	return false
}
