//go:build cgo

package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteAvailable reports whether the SQLite engine is compiled in.
const SQLiteAvailable = true

func sqliteViolation(err error) Violation {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return NoViolation
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return UniqueViolation
	default:
		return InvalidViolation
	}
}
