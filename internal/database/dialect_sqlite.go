package database

import (
	"database/sql"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite, the embedded engine
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// sqliteDefaults are applied when the configured path does not set them
var sqliteDefaults = map[string]string{
	"_journal_mode": "WAL",
	"_busy_timeout": "5000",
}

// DSN enables foreign keys and WAL on every pooled connection, not just the first one.
// Parameters already present in the path are kept; foreign keys are always forced on.
func (d *SQLiteDialect) DSN(config DialectConfig) string {
	path, rawQuery, _ := strings.Cut(config.Path, "?")
	params, _ := url.ParseQuery(rawQuery)
	if params == nil {
		params = url.Values{}
	}
	for key, value := range sqliteDefaults {
		if !params.Has(key) {
			params.Set(key, value)
		}
	}
	params.Set("_foreign_keys", "on")

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params.Encode()
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	// SQLite uses ? placeholders, no rewrite needed
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	for _, pragma := range d.SessionPragmas() {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

func (d *SQLiteDialect) SchemaFile() string {
	return "sqlite.sql"
}

func (d *SQLiteDialect) SessionPragmas() []string {
	return []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
	}
}

func (d *SQLiteDialect) BeginSchema() string {
	return "BEGIN EXCLUSIVE"
}

func (d *SQLiteDialect) ReplaceLinkCodeQuery() string {
	return "INSERT OR REPLACE INTO link_codes (code, elder_id, created_by, created_at) VALUES (?, ?, ?, ?)"
}

func (d *SQLiteDialect) Violation(err error) Violation {
	return sqliteViolation(err)
}
