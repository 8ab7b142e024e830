package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// InitSchema creates the five collections if they do not exist. Every
// statement runs on one connection inside a single transaction, exclusive on
// SQLite. Running it again leaves existing data untouched.
func (db *DB) InitSchema(ctx context.Context) (err error) {
	content, err := schemaFS.ReadFile("schema/" + db.Dialect.SchemaFile())
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	// Pragmas cannot change inside a transaction
	for _, pragma := range db.Dialect.SessionPragmas() {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := conn.ExecContext(ctx, db.Dialect.BeginSchema()); err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		}
	}()

	for _, stmt := range splitStatements(string(content)) {
		if _, err = conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// splitStatements splits a schema file on semicolons. Schema files never
// contain semicolons inside literals.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return stmts
}
