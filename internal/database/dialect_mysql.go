package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces found-rows semantics so UPDATE reports matched rows like the other engines
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return config.URL
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for MySQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	for _, stmt := range d.SessionPragmas() {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (d *MySQLDialect) SchemaFile() string {
	return "mysql.sql"
}

func (d *MySQLDialect) SessionPragmas() []string {
	return []string{"SET FOREIGN_KEY_CHECKS = 1;"}
}

// BeginSchema opens a transaction; MySQL still commits each CREATE TABLE implicitly
func (d *MySQLDialect) BeginSchema() string {
	return "START TRANSACTION"
}

func (d *MySQLDialect) ReplaceLinkCodeQuery() string {
	return "REPLACE INTO link_codes (code, elder_id, created_by, created_at) VALUES (?, ?, ?, ?)"
}

func (d *MySQLDialect) Violation(err error) Violation {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return NoViolation
	}
	switch me.Number {
	case 1062: // ER_DUP_ENTRY
		return UniqueViolation
	case 1048, 1216, 1452, 3819: // bad null, no referenced row, check constraint
		return InvalidViolation
	default:
		return NoViolation
	}
}
