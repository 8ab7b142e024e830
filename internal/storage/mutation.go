package storage

import "time"

// MutationKind enumerates the write operations both backends must implement.
type MutationKind int

const (
	KindInsertUser MutationKind = iota + 1
	KindInsertElder
	KindUpdateElder
	KindInsertReminder
	KindUpdateReminder
	KindDeleteReminder
	KindReplaceLinkCode
	KindInsertCaregiverLink
)

var mutationNames = map[MutationKind]string{
	KindInsertUser:          "insertUser",
	KindInsertElder:         "insertElder",
	KindUpdateElder:         "updateElder",
	KindInsertReminder:      "insertReminder",
	KindUpdateReminder:      "updateReminder",
	KindDeleteReminder:      "deleteReminder",
	KindReplaceLinkCode:     "replaceLinkCode",
	KindInsertCaregiverLink: "insertCaregiverLink",
}

func (k MutationKind) String() string {
	if name, ok := mutationNames[k]; ok {
		return name
	}
	return "unknownMutation"
}

// Mutation is a write request.
type Mutation interface {
	Kind() MutationKind
	Params() []any
}

// Result is the normalized outcome of a mutation. GeneratedID is 0 when the
// operation does not generate an identity.
type Result struct {
	GeneratedID int64
	Affected    int64
}

type InsertUser struct {
	Name             string
	NationalID       *string
	Email            *string
	CredentialDigest string
	Role             string
	Subrole          *string
	CreatedAt        time.Time
}

func (InsertUser) Kind() MutationKind { return KindInsertUser }
func (m InsertUser) Params() []any {
	return []any{m.Name, nullString(m.NationalID), nullString(m.Email), m.CredentialDigest,
		m.Role, nullString(m.Subrole), FormatTime(m.CreatedAt)}
}

type InsertElder struct {
	FullName            string
	Age                 *int64
	Address             *string
	MedicalConditions   *string
	Allergies           *string
	Notes               *string
	ResponsibleFamilyID int64
}

func (InsertElder) Kind() MutationKind { return KindInsertElder }
func (m InsertElder) Params() []any {
	return []any{m.FullName, nullInt(m.Age), nullString(m.Address), nullString(m.MedicalConditions),
		nullString(m.Allergies), nullString(m.Notes), m.ResponsibleFamilyID}
}

// UpdateElder overwrites every editable field; the owning family never changes.
type UpdateElder struct {
	ElderID           int64
	FullName          string
	Age               *int64
	Address           *string
	MedicalConditions *string
	Allergies         *string
	Notes             *string
}

func (UpdateElder) Kind() MutationKind { return KindUpdateElder }
func (m UpdateElder) Params() []any {
	return []any{m.ElderID, m.FullName, nullInt(m.Age), nullString(m.Address),
		nullString(m.MedicalConditions), nullString(m.Allergies), nullString(m.Notes)}
}

type InsertReminder struct {
	ElderID int64
	Name    string
	Time    string
}

func (InsertReminder) Kind() MutationKind { return KindInsertReminder }
func (m InsertReminder) Params() []any { return []any{m.ElderID, m.Name, m.Time} }

type UpdateReminder struct {
	ReminderID int64
	Name       string
	Time       string
}

func (UpdateReminder) Kind() MutationKind { return KindUpdateReminder }
func (m UpdateReminder) Params() []any { return []any{m.ReminderID, m.Name, m.Time} }

type DeleteReminder struct {
	ReminderID int64
}

func (DeleteReminder) Kind() MutationKind { return KindDeleteReminder }
func (m DeleteReminder) Params() []any { return []any{m.ReminderID} }

// ReplaceLinkCode stores a code after removing any previous code of the same elder.
type ReplaceLinkCode struct {
	Code      string
	ElderID   int64
	CreatedBy int64
	CreatedAt time.Time
}

func (ReplaceLinkCode) Kind() MutationKind { return KindReplaceLinkCode }
func (m ReplaceLinkCode) Params() []any {
	return []any{m.Code, m.ElderID, m.CreatedBy, FormatTime(m.CreatedAt)}
}

type InsertCaregiverLink struct {
	ElderID     int64
	CaregiverID int64
}

func (InsertCaregiverLink) Kind() MutationKind { return KindInsertCaregiverLink }
func (m InsertCaregiverLink) Params() []any { return []any{m.ElderID, m.CaregiverID} }

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
