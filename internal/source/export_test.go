package source

import (
	"testing"

	"github.com/jmoiron/sqlx"
)

// SetOpenDB swaps the database opener for the duration of t.
func SetOpenDB(t *testing.T, open func(path string) (*sqlx.DB, error)) {
	t.Helper()
	prev := openDB
	openDB = open
	t.Cleanup(func() { openDB = prev })
}

// OpenDB is the production opener.
var OpenDB = openDB
