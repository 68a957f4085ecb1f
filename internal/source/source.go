// Package source reads the two inputs of a report run: the customers CSV file
// and the orders table of a SQLite database.
package source

import (
	"errors"
	"fmt"
)

// Name identifies an input.
type Name string

const (
	Customers Name = "customers"
	Orders    Name = "orders"
)

// ErrNotFound is returned (wrapped in *Error) when an input file does not exist.
var ErrNotFound = errors.New("source not found")

// Error reports which input could not be read.
type Error struct {
	Source Name
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read %s from %s: %v", e.Source, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(src Name, path string, err error) error {
	return &Error{Source: src, Path: path, Err: err}
}
