package storage

import "time"

// ColumnKind is the normalized value type of a projected column.
type ColumnKind int

const (
	Int  ColumnKind = iota // int64
	Text                   // string
)

// Column describes one field of a query projection.
type Column struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

// Record is one normalized result row. Values are int64, string or nil only,
// whichever backend produced them.
type Record map[string]any

// Int64 returns the integer value of col, or 0 when it is absent or NULL.
func (r Record) Int64(col string) int64 {
	v, _ := r[col].(int64)
	return v
}

// NullInt64 returns nil when col is NULL.
func (r Record) NullInt64(col string) *int64 {
	v, ok := r[col].(int64)
	if !ok {
		return nil
	}
	return &v
}

// String returns the text value of col, or "" when it is absent or NULL.
func (r Record) String(col string) string {
	v, _ := r[col].(string)
	return v
}

// NullString returns nil when col is NULL.
func (r Record) NullString(col string) *string {
	v, ok := r[col].(string)
	if !ok {
		return nil
	}
	return &v
}

// Time parses a timestamp column written by FormatTime.
func (r Record) Time(col string) time.Time {
	t, _ := ParseTime(r.String(col))
	return t
}

// Project keeps only the given columns, filling missing ones with nil.
func (r Record) Project(cols []Column) Record {
	out := make(Record, len(cols))
	for _, c := range cols {
		out[c.Name] = r[c.Name]
	}
	return out
}

// ColumnNames lists the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

const timeLayout = time.RFC3339Nano

// FormatTime is the storage representation of timestamps on every backend.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime reverses FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Projections shared by both backends.
var (
	UserColumns = []Column{
		{Name: "id", Kind: Int},
		{Name: "name", Kind: Text},
		{Name: "national_id", Kind: Text, Nullable: true},
		{Name: "email", Kind: Text, Nullable: true},
		{Name: "credential_digest", Kind: Text},
		{Name: "role", Kind: Text},
		{Name: "subrole", Kind: Text, Nullable: true},
		{Name: "created_at", Kind: Text},
	}

	UserSummaryColumns = []Column{
		{Name: "id", Kind: Int},
		{Name: "name", Kind: Text},
		{Name: "national_id", Kind: Text, Nullable: true},
		{Name: "role", Kind: Text},
		{Name: "subrole", Kind: Text, Nullable: true},
	}

	ElderColumns = []Column{
		{Name: "id", Kind: Int},
		{Name: "full_name", Kind: Text},
		{Name: "age", Kind: Int, Nullable: true},
		{Name: "address", Kind: Text, Nullable: true},
		{Name: "medical_conditions", Kind: Text, Nullable: true},
		{Name: "allergies", Kind: Text, Nullable: true},
		{Name: "notes", Kind: Text, Nullable: true},
		{Name: "responsible_family_id", Kind: Int},
	}

	ReminderColumns = []Column{
		{Name: "id", Kind: Int},
		{Name: "elder_id", Kind: Int},
		{Name: "name", Kind: Text},
		{Name: "time", Kind: Text},
	}

	CaregiverColumns = []Column{
		{Name: "id", Kind: Int},
		{Name: "name", Kind: Text},
		{Name: "subrole", Kind: Text, Nullable: true},
	}

	LinkCodeColumns = []Column{
		{Name: "code", Kind: Text},
		{Name: "elder_id", Kind: Int},
		{Name: "created_by", Kind: Int},
		{Name: "created_at", Kind: Text},
	}

	LinkIDColumns = []Column{
		{Name: "id", Kind: Int},
	}
)
