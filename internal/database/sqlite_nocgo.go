//go:build !cgo

package database

// SQLiteAvailable reports whether the SQLite engine is compiled in. The
// go-sqlite3 driver is only a stub without cgo.
const SQLiteAvailable = false

func sqliteViolation(error) Violation {
	return NoViolation
}
