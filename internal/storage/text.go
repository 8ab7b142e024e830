package storage

import (
	"fmt"

	"eldercare/internal/validation"
)

// paramNames labels each position of Mutation.Params for error reporting.
var paramNames = map[MutationKind][]string{
	KindInsertUser:          {"name", "national_id", "email", "credential_digest", "role", "subrole", "created_at"},
	KindInsertElder:         {"full_name", "age", "address", "medical_conditions", "allergies", "notes", "responsible_family_id"},
	KindUpdateElder:         {"id", "full_name", "age", "address", "medical_conditions", "allergies", "notes"},
	KindInsertReminder:      {"elder_id", "name", "time"},
	KindUpdateReminder:      {"id", "name", "time"},
	KindDeleteReminder:      {"id"},
	KindReplaceLinkCode:     {"code", "elder_id", "created_by", "created_at"},
	KindInsertCaregiverLink: {"elder_id", "caregiver_id"},
}

// CheckText rejects a mutation carrying text that is not valid UTF-8. Both
// backends run it before writing so such values fail the same way everywhere.
func CheckText(m Mutation) error {
	names := paramNames[m.Kind()]
	for i, p := range m.Params() {
		s, ok := p.(string)
		if !ok {
			continue
		}
		field := fmt.Sprintf("param %d", i+1)
		if i < len(names) {
			field = names[i]
		}
		if err := validation.ValidateText(field, s); err != nil {
			return fmt.Errorf("%s: %w", m.Kind(), err)
		}
	}
	return nil
}
