package emulated

import "eldercare/internal/storage"

// Keys of the emulated collections. Each value is a JSON array of rows.
const (
	keyPrefix      = "eldercare/"
	usersKey       = keyPrefix + "users"
	eldersKey      = keyPrefix + "elders"
	remindersKey   = keyPrefix + "medication_reminders"
	linksKey       = keyPrefix + "caregiver_links"
	linkCodesKey   = keyPrefix + "link_codes"
	countersKey    = keyPrefix + "counters"
	emptyArrayJSON = "[]"
)

var collectionKeys = []string{usersKey, eldersKey, remindersKey, linksKey, linkCodesKey}

type userRow struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	NationalID       *string `json:"national_id"`
	Email            *string `json:"email"`
	CredentialDigest string  `json:"credential_digest"`
	Role             string  `json:"role"`
	Subrole          *string `json:"subrole"`
	CreatedAt        string  `json:"created_at"`
}

func (r userRow) record() storage.Record {
	return storage.Record{
		"id":                r.ID,
		"name":              r.Name,
		"national_id":       optString(r.NationalID),
		"email":             optString(r.Email),
		"credential_digest": r.CredentialDigest,
		"role":              r.Role,
		"subrole":           optString(r.Subrole),
		"created_at":        r.CreatedAt,
	}
}

type elderRow struct {
	ID                  int64   `json:"id"`
	FullName            string  `json:"full_name"`
	Age                 *int64  `json:"age"`
	Address             *string `json:"address"`
	MedicalConditions   *string `json:"medical_conditions"`
	Allergies           *string `json:"allergies"`
	Notes               *string `json:"notes"`
	ResponsibleFamilyID int64   `json:"responsible_family_id"`
}

func (r elderRow) record() storage.Record {
	return storage.Record{
		"id":                    r.ID,
		"full_name":             r.FullName,
		"age":                   optInt(r.Age),
		"address":               optString(r.Address),
		"medical_conditions":    optString(r.MedicalConditions),
		"allergies":             optString(r.Allergies),
		"notes":                 optString(r.Notes),
		"responsible_family_id": r.ResponsibleFamilyID,
	}
}

type reminderRow struct {
	ID      int64  `json:"id"`
	ElderID int64  `json:"elder_id"`
	Name    string `json:"name"`
	Time    string `json:"time"`
}

func (r reminderRow) record() storage.Record {
	return storage.Record{"id": r.ID, "elder_id": r.ElderID, "name": r.Name, "time": r.Time}
}

type linkRow struct {
	ID          int64 `json:"id"`
	ElderID     int64 `json:"elder_id"`
	CaregiverID int64 `json:"caregiver_id"`
}

type codeRow struct {
	Code      string `json:"code"`
	ElderID   int64  `json:"elder_id"`
	CreatedBy int64  `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

func (r codeRow) record() storage.Record {
	return storage.Record{
		"code":       r.Code,
		"elder_id":   r.ElderID,
		"created_by": r.CreatedBy,
		"created_at": r.CreatedAt,
	}
}

// counters holds the last identity issued per collection. link_codes is keyed
// by code and has none.
type counters struct {
	Users               int64 `json:"users"`
	Elders              int64 `json:"elders"`
	MedicationReminders int64 `json:"medication_reminders"`
	CaregiverLinks      int64 `json:"caregiver_links"`
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func sameString(a *string, b string) bool {
	return a != nil && *a == b
}
