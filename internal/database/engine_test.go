package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eldercare/internal/errs"
	"eldercare/internal/storage"
)

func newMockEngine(t *testing.T, dialect Dialect) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(NewWithDialect(db, dialect)), mock
}

func TestEngine_Postgres_InsertUsesReturning(t *testing.T) {
	e, mock := newMockEngine(t, NewPostgresDialect())

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO medication_reminders (elder_id, name, time) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs(int64(4), "Metformin", "08:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	res, err := e.Mutate(context.Background(), storage.InsertReminder{ElderID: 4, Name: "Metformin", Time: "08:00"})
	require.NoError(t, err)
	require.Equal(t, storage.Result{GeneratedID: 17, Affected: 1}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Postgres_UniqueViolationIsConflict(t *testing.T) {
	e, mock := newMockEngine(t, NewPostgresDialect())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO caregiver_links (elder_id, caregiver_id) VALUES ($1, $2) RETURNING id")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := e.Mutate(context.Background(), storage.InsertCaregiverLink{ElderID: 1, CaregiverID: 2})
	require.ErrorIs(t, err, errs.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_MySQL_ForeignKeyIsValidation(t *testing.T) {
	e, mock := newMockEngine(t, NewMySQLDialect())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO caregiver_links (elder_id, caregiver_id) VALUES (?, ?)")).
		WithArgs(int64(1), int64(99)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	_, err := e.Mutate(context.Background(), storage.InsertCaregiverLink{ElderID: 1, CaregiverID: 99})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_DriverFailureIsIO(t *testing.T) {
	e, mock := newMockEngine(t, NewMySQLDialect())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM medication_reminders WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))

	_, err := e.Mutate(context.Background(), storage.DeleteReminder{ReminderID: 3})
	require.ErrorIs(t, err, errs.ErrIO)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_UpdateElderMovesIDLast(t *testing.T) {
	e, mock := newMockEngine(t, NewMySQLDialect())
	age := int64(82)
	address, conditions, allergies, notes := "Rua A, 10", "hypertension", "penicillin", "likes tea"

	mock.ExpectExec(regexp.QuoteMeta(updateElderSQL)).
		WithArgs("Carlos", age, address, conditions, allergies, notes, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := e.Mutate(context.Background(), storage.UpdateElder{
		ElderID:           5,
		FullName:          "Carlos",
		Age:               &age,
		Address:           &address,
		MedicalConditions: &conditions,
		Allergies:         &allergies,
		Notes:             &notes,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_ReplaceLinkCode(t *testing.T) {
	e, mock := newMockEngine(t, NewMySQLDialect())
	m := storage.ReplaceLinkCode{Code: "K3Z9QA-5", ElderID: 5, CreatedBy: 1}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteElderLinkCodeSQL)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(NewMySQLDialect().ReplaceLinkCodeQuery())).
		WithArgs("K3Z9QA-5", int64(5), int64(1), storage.FormatTime(m.CreatedAt)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := e.Mutate(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, storage.Result{Affected: 1}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_ReplaceLinkCodeRollsBack(t *testing.T) {
	e, mock := newMockEngine(t, NewPostgresDialect())
	m := storage.ReplaceLinkCode{Code: "K3Z9QA-5", ElderID: 5, CreatedBy: 1}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM link_codes WHERE elder_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO link_codes").
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	_, err := e.Mutate(context.Background(), m)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_WritesShareTransactionPath(t *testing.T) {
	e, mock := newMockEngine(t, NewPostgresDialect())
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO caregiver_links (elder_id, caregiver_id) VALUES ($1, $2) RETURNING id")).
		WithArgs(int64(5), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM medication_reminders WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := e.db.Begin(ctx)
	require.NoError(t, err)
	require.Equal(t, "postgres", tx.GetDialect().Name())

	res, err := e.insert(ctx, tx, insertCaregiverLinkSQL, []any{int64(5), int64(3)})
	require.NoError(t, err)
	require.Equal(t, storage.Result{GeneratedID: 9, Affected: 1}, res)

	res, err = e.exec(ctx, tx, deleteReminderSQL, []any{int64(2)})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Affected)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_QueryNormalizesColumns(t *testing.T) {
	e, mock := newMockEngine(t, NewPostgresDialect())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT u.id, u.name, u.subrole FROM caregiver_links cl JOIN users u ON u.id = cl.caregiver_id " +
			"WHERE cl.elder_id = $1 ORDER BY cl.id ASC")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subrole"}).
			AddRow([]byte("3"), []byte("Renato"), "formal").
			AddRow(int64(4), "Lucia", nil))

	records, err := e.Query(context.Background(), storage.ListCaregiversForElder{ElderID: 5})
	require.NoError(t, err)
	require.Equal(t, []storage.Record{
		{"id": int64(3), "name": "Renato", "subrole": "formal"},
		{"id": int64(4), "name": "Lucia", "subrole": nil},
	}, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_FindUserByIdentifierBindsBothColumns(t *testing.T) {
	e, mock := newMockEngine(t, NewSQLiteDialect())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE national_id = ? OR name = ? ORDER BY id ASC LIMIT 1")).
		WithArgs("Ana", "Ana").
		WillReturnRows(sqlmock.NewRows(storage.ColumnNames(storage.UserColumns)))

	records, err := e.Query(context.Background(), storage.FindUserByIdentifier{Identifier: "Ana"})
	require.NoError(t, err)
	require.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

type unknownQuery struct{}

func (unknownQuery) Kind() storage.QueryKind { return storage.QueryKind(99) }
func (unknownQuery) Params() []any { return nil }
func (unknownQuery) Columns() []storage.Column { return nil }

func TestEngine_UnknownQueryIsUnsupported(t *testing.T) {
	e, _ := newMockEngine(t, NewSQLiteDialect())

	_, err := e.Query(context.Background(), unknownQuery{})
	require.ErrorIs(t, err, errs.ErrUnsupportedOperation)
}

func TestEngine_RejectsInvalidUTF8BeforeDriver(t *testing.T) {
	e, mock := newMockEngine(t, NewMySQLDialect())
	notes := "caf\xe9"

	_, err := e.Mutate(context.Background(), storage.InsertElder{FullName: "Carlos", Notes: &notes, ResponsibleFamilyID: 1})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}
