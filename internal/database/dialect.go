package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// Name identifies the dialect in logs ("sqlite", "postgres", "mysql")
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// SchemaFile returns the embedded schema file name (e.g., "sqlite.sql")
	SchemaFile() string

	// SessionPragmas returns statements run on the schema connection before the transaction opens
	SessionPragmas() []string

	// BeginSchema returns the statement that opens the schema transaction
	BeginSchema() string

	// ReplaceLinkCodeQuery returns the insert-or-replace statement for link_codes
	ReplaceLinkCodeQuery() string

	// Violation reports which kind of constraint, if any, the driver error violated
	Violation(err error) Violation
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// Violation classifies driver constraint errors.
type Violation int

const (
	NoViolation Violation = iota
	// UniqueViolation covers UNIQUE and PRIMARY KEY constraints.
	UniqueViolation
	// InvalidViolation covers FOREIGN KEY, CHECK and NOT NULL constraints.
	InvalidViolation
)

// placeholderRegexp matches ? placeholders; queries never quote a literal ?
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
