package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string {
	return "postgres"
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	// PostgreSQL doesn't support LastInsertId(), needs RETURNING clause
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (d *PostgresDialect) SchemaFile() string {
	return "postgres.sql"
}

func (d *PostgresDialect) SessionPragmas() []string {
	return nil
}

func (d *PostgresDialect) BeginSchema() string {
	return "BEGIN"
}

func (d *PostgresDialect) ReplaceLinkCodeQuery() string {
	return "INSERT INTO link_codes (code, elder_id, created_by, created_at) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT (code) DO UPDATE SET elder_id = EXCLUDED.elder_id, " +
		"created_by = EXCLUDED.created_by, created_at = EXCLUDED.created_at"
}

func (d *PostgresDialect) Violation(err error) Violation {
	var pe *pq.Error
	if !errors.As(err, &pe) {
		return NoViolation
	}
	switch pe.Code {
	case "23505": // unique_violation
		return UniqueViolation
	case "23503", "23514", "23502": // foreign_key, check, not_null
		return InvalidViolation
	default:
		return NoViolation
	}
}
