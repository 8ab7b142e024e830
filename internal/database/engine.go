package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eldercare/internal/errs"
	"eldercare/internal/storage"
)

// Engine serves the data model from a relational database.
type Engine struct {
	db *DB
}

var _ storage.Backend = (*Engine)(nil)

// NewEngine wraps an open database.
func NewEngine(db *DB) *Engine {
	return &Engine{db: db}
}

func (e *Engine) Kind() storage.BackendKind {
	return storage.Engine
}

func (e *Engine) InitSchema(ctx context.Context) error {
	if err := e.db.InitSchema(ctx); err != nil {
		return errs.IO("init schema", err)
	}
	return nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func columnList(alias string, cols []storage.Column) string {
	names := storage.ColumnNames(cols)
	if alias != "" {
		for i, n := range names {
			names[i] = alias + "." + n
		}
	}
	return strings.Join(names, ", ")
}

// querySQL maps a query descriptor to one parameterized statement.
func querySQL(q storage.Query) (string, []any, bool) {
	var (
		alias string
		from  string
		args  = q.Params()
	)
	switch q := q.(type) {
	case storage.FindUserByIdentifier:
		from = "users WHERE national_id = ? OR name = ? ORDER BY id ASC LIMIT 1"
		args = []any{q.Identifier, q.Identifier}
	case storage.FindUserSummaryByNationalID:
		from = "users WHERE national_id = ? LIMIT 1"
	case storage.ListEldersByFamily:
		from = "elders WHERE responsible_family_id = ? ORDER BY id DESC"
	case storage.FindElderByID:
		from = "elders WHERE id = ?"
	case storage.ListRemindersByElder:
		from = "medication_reminders WHERE elder_id = ? ORDER BY time ASC, id ASC"
	case storage.ListCaregiversForElder:
		alias = "u"
		from = "caregiver_links cl JOIN users u ON u.id = cl.caregiver_id WHERE cl.elder_id = ? ORDER BY cl.id ASC"
	case storage.FindLinkCodeByCode:
		from = "link_codes WHERE code = ?"
	case storage.FindCaregiverLink:
		from = "caregiver_links WHERE elder_id = ? AND caregiver_id = ? LIMIT 1"
	case storage.ListEldersForCaregiver:
		alias = "e"
		from = "caregiver_links cl JOIN elders e ON e.id = cl.elder_id WHERE cl.caregiver_id = ? ORDER BY e.id DESC"
	default:
		return "", nil, false
	}
	return "SELECT " + columnList(alias, q.Columns()) + " FROM " + from, args, true
}

// Query runs q and normalizes every row into a storage.Record.
func (e *Engine) Query(ctx context.Context, q storage.Query) ([]storage.Record, error) {
	query, args, ok := querySQL(q)
	if !ok {
		return nil, storage.Unsupported(storage.Engine, q.Kind())
	}

	rows, err := e.db.Query(ctx, query, args...)
	if err != nil {
		return nil, e.classify(q.Kind().String(), err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, q.Columns())
	if err != nil {
		return nil, errs.IO(q.Kind().String(), err)
	}
	return records, nil
}

func scanRecords(rows *sql.Rows, cols []storage.Column) ([]storage.Record, error) {
	records := []storage.Record{}
	for rows.Next() {
		dest := make([]any, len(cols))
		for i, c := range cols {
			if c.Kind == storage.Int {
				dest[i] = new(sql.NullInt64)
			} else {
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(storage.Record, len(cols))
		for i, c := range cols {
			switch v := dest[i].(type) {
			case *sql.NullInt64:
				if v.Valid {
					record[c.Name] = v.Int64
				} else {
					record[c.Name] = nil
				}
			case *sql.NullString:
				if v.Valid {
					record[c.Name] = v.String
				} else {
					record[c.Name] = nil
				}
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const (
	insertUserSQL = "INSERT INTO users (name, national_id, email, credential_digest, role, subrole, created_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"
	insertElderSQL = "INSERT INTO elders (full_name, age, address, medical_conditions, allergies, notes, " +
		"responsible_family_id) VALUES (?, ?, ?, ?, ?, ?, ?)"
	updateElderSQL = "UPDATE elders SET full_name = ?, age = ?, address = ?, medical_conditions = ?, " +
		"allergies = ?, notes = ? WHERE id = ?"
	insertReminderSQL      = "INSERT INTO medication_reminders (elder_id, name, time) VALUES (?, ?, ?)"
	updateReminderSQL      = "UPDATE medication_reminders SET name = ?, time = ? WHERE id = ?"
	deleteReminderSQL      = "DELETE FROM medication_reminders WHERE id = ?"
	deleteElderLinkCodeSQL = "DELETE FROM link_codes WHERE elder_id = ?"
	insertCaregiverLinkSQL = "INSERT INTO caregiver_links (elder_id, caregiver_id) VALUES (?, ?)"
)

// Mutate executes m directly against the database.
func (e *Engine) Mutate(ctx context.Context, m storage.Mutation) (storage.Result, error) {
	op := m.Kind().String()
	if err := storage.CheckText(m); err != nil {
		return storage.Result{}, err
	}

	var (
		res storage.Result
		err error
	)
	switch m := m.(type) {
	case storage.InsertUser:
		res, err = e.insert(ctx, e.db, insertUserSQL, m.Params())
	case storage.InsertElder:
		res, err = e.insert(ctx, e.db, insertElderSQL, m.Params())
	case storage.UpdateElder:
		p := m.Params()
		res, err = e.exec(ctx, e.db, updateElderSQL, append(p[1:], p[0]))
	case storage.InsertReminder:
		res, err = e.insert(ctx, e.db, insertReminderSQL, m.Params())
	case storage.UpdateReminder:
		res, err = e.exec(ctx, e.db, updateReminderSQL, []any{m.Name, m.Time, m.ReminderID})
	case storage.DeleteReminder:
		res, err = e.exec(ctx, e.db, deleteReminderSQL, m.Params())
	case storage.ReplaceLinkCode:
		res, err = e.replaceLinkCode(ctx, m)
	case storage.InsertCaregiverLink:
		res, err = e.insert(ctx, e.db, insertCaregiverLinkSQL, m.Params())
	default:
		return storage.Result{}, storage.Unsupported(storage.Engine, m.Kind())
	}
	if err != nil {
		return storage.Result{}, e.classify(op, err)
	}
	return res, nil
}

func (e *Engine) insert(ctx context.Context, x DBTX, query string, args []any) (storage.Result, error) {
	id, err := x.ExecReturningID(ctx, query, args...)
	if err != nil {
		return storage.Result{}, err
	}
	return storage.Result{GeneratedID: id, Affected: 1}, nil
}

func (e *Engine) exec(ctx context.Context, x DBTX, query string, args []any) (storage.Result, error) {
	result, err := x.Exec(ctx, query, args...)
	if err != nil {
		return storage.Result{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Result{}, err
	}
	return storage.Result{Affected: affected}, nil
}

// replaceLinkCode drops the elder's previous code before storing the new one,
// so at most one code per elder stays redeemable.
func (e *Engine) replaceLinkCode(ctx context.Context, m storage.ReplaceLinkCode) (storage.Result, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return storage.Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := e.exec(ctx, tx, deleteElderLinkCodeSQL, []any{m.ElderID}); err != nil {
		return storage.Result{}, err
	}
	if _, err := e.exec(ctx, tx, tx.GetDialect().ReplaceLinkCodeQuery(), m.Params()); err != nil {
		return storage.Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return storage.Result{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	// REPLACE reports 2 rows on MySQL when a row was overwritten
	return storage.Result{Affected: 1}, nil
}

func (e *Engine) classify(op string, err error) error {
	switch e.db.GetDialect().Violation(err) {
	case UniqueViolation:
		return fmt.Errorf("%s: %w: %v", op, errs.ErrConflict, err)
	case InvalidViolation:
		return fmt.Errorf("%s: %w: %v", op, errs.ErrValidation, err)
	default:
		return errs.IO(op, err)
	}
}
