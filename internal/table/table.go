// Package table loads the four-column guide dataset from a CSV file or
// Postgres and caches it with a TTL. Snapshots are immutable; refreshes
// replace the whole slice atomically so concurrent readers always see a
// fully-formed table.
package table

import "errors"

// Row is one navigable path through the dataset. All fields are always
// non-nil strings; the empty string is permitted. Rows with an empty Key
// are excluded from selectable paths.
type Row struct {
	Key      string `db:"key"`
	Option1  string `db:"option1"`
	Option2  string `db:"option2"`
	Terminal string `db:"terminal"`
}

// Dataset load failures. The first three are fatal at startup: the
// process must not serve traffic without valid data.
var (
	// ErrNotFound indicates the dataset source does not exist.
	ErrNotFound = errors.New("table: dataset source not found")
	// ErrFormat indicates a required column is missing.
	ErrFormat = errors.New("table: dataset format invalid")
	// ErrLoad covers any other I/O or parse failure.
	ErrLoad = errors.New("table: dataset load failed")
)

// Source produces a fresh copy of the dataset.
type Source interface {
	Load() ([]Row, error)
}
