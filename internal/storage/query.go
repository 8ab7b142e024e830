package storage

// QueryKind enumerates the read operations both backends must implement.
type QueryKind int

const (
	KindFindUserByIdentifier QueryKind = iota + 1
	KindFindUserSummaryByNationalID
	KindListEldersByFamily
	KindFindElderByID
	KindListRemindersByElder
	KindListCaregiversForElder
	KindFindLinkCodeByCode
	KindFindCaregiverLink
	KindListEldersForCaregiver
)

var queryNames = map[QueryKind]string{
	KindFindUserByIdentifier:        "findUserByIdentifier",
	KindFindUserSummaryByNationalID: "findUserSummaryByNationalId",
	KindListEldersByFamily:          "listEldersByFamily",
	KindFindElderByID:               "findElderById",
	KindListRemindersByElder:        "listRemindersByElder",
	KindListCaregiversForElder:      "listCaregiversForElder",
	KindFindLinkCodeByCode:          "findLinkCodeByCode",
	KindFindCaregiverLink:           "findCaregiverLink",
	KindListEldersForCaregiver:      "listEldersForCaregiver",
}

func (k QueryKind) String() string {
	if name, ok := queryNames[k]; ok {
		return name
	}
	return "unknownQuery"
}

// Query is a read request. Params returns the ordered parameter list that
// forms the contract between services and backends.
type Query interface {
	Kind() QueryKind
	Params() []any
	Columns() []Column
}

// FindUserByIdentifier matches national_id or name; the lowest id wins.
type FindUserByIdentifier struct {
	Identifier string
}

func (FindUserByIdentifier) Kind() QueryKind { return KindFindUserByIdentifier }
func (q FindUserByIdentifier) Params() []any { return []any{q.Identifier} }
func (FindUserByIdentifier) Columns() []Column { return UserColumns }

type FindUserSummaryByNationalID struct {
	NationalID string
}

func (FindUserSummaryByNationalID) Kind() QueryKind { return KindFindUserSummaryByNationalID }
func (q FindUserSummaryByNationalID) Params() []any { return []any{q.NationalID} }
func (FindUserSummaryByNationalID) Columns() []Column { return UserSummaryColumns }

// ListEldersByFamily is ordered by descending elder id.
type ListEldersByFamily struct {
	FamilyID int64
}

func (ListEldersByFamily) Kind() QueryKind { return KindListEldersByFamily }
func (q ListEldersByFamily) Params() []any { return []any{q.FamilyID} }
func (ListEldersByFamily) Columns() []Column { return ElderColumns }

type FindElderByID struct {
	ElderID int64
}

func (FindElderByID) Kind() QueryKind { return KindFindElderByID }
func (q FindElderByID) Params() []any { return []any{q.ElderID} }
func (FindElderByID) Columns() []Column { return ElderColumns }

// ListRemindersByElder is ordered by time, then id.
type ListRemindersByElder struct {
	ElderID int64
}

func (ListRemindersByElder) Kind() QueryKind { return KindListRemindersByElder }
func (q ListRemindersByElder) Params() []any { return []any{q.ElderID} }
func (ListRemindersByElder) Columns() []Column { return ReminderColumns }

// ListCaregiversForElder joins caregiver_links with users, in link order.
type ListCaregiversForElder struct {
	ElderID int64
}

func (ListCaregiversForElder) Kind() QueryKind { return KindListCaregiversForElder }
func (q ListCaregiversForElder) Params() []any { return []any{q.ElderID} }
func (ListCaregiversForElder) Columns() []Column { return CaregiverColumns }

type FindLinkCodeByCode struct {
	Code string
}

func (FindLinkCodeByCode) Kind() QueryKind { return KindFindLinkCodeByCode }
func (q FindLinkCodeByCode) Params() []any { return []any{q.Code} }
func (FindLinkCodeByCode) Columns() []Column { return LinkCodeColumns }

type FindCaregiverLink struct {
	ElderID     int64
	CaregiverID int64
}

func (FindCaregiverLink) Kind() QueryKind { return KindFindCaregiverLink }
func (q FindCaregiverLink) Params() []any { return []any{q.ElderID, q.CaregiverID} }
func (FindCaregiverLink) Columns() []Column { return LinkIDColumns }

// ListEldersForCaregiver joins caregiver_links with elders, ordered by descending elder id.
type ListEldersForCaregiver struct {
	CaregiverID int64
}

func (ListEldersForCaregiver) Kind() QueryKind { return KindListEldersForCaregiver }
func (q ListEldersForCaregiver) Params() []any { return []any{q.CaregiverID} }
func (ListEldersForCaregiver) Columns() []Column { return ElderColumns }
