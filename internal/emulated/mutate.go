package emulated

import (
	"context"
	"fmt"

	"eldercare/internal/errs"
	"eldercare/internal/models"
	"eldercare/internal/storage"
)

// Mutate applies m under the backend mutex. The collection and, for inserts,
// the counters record are written in one batch; a failed batch leaves no
// trace.
func (b *Backend) Mutate(ctx context.Context, m storage.Mutation) (storage.Result, error) {
	if err := storage.CheckText(m); err != nil {
		return storage.Result{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		res storage.Result
		err error
	)
	switch m := m.(type) {
	case storage.InsertUser:
		res, err = b.insertUser(ctx, m)
	case storage.InsertElder:
		res, err = b.insertElder(ctx, m)
	case storage.UpdateElder:
		res, err = b.updateElder(ctx, m)
	case storage.InsertReminder:
		res, err = b.insertReminder(ctx, m)
	case storage.UpdateReminder:
		res, err = b.updateReminder(ctx, m)
	case storage.DeleteReminder:
		res, err = b.deleteReminder(ctx, m)
	case storage.ReplaceLinkCode:
		res, err = b.replaceLinkCode(ctx, m)
	case storage.InsertCaregiverLink:
		res, err = b.insertCaregiverLink(ctx, m)
	default:
		return storage.Result{}, storage.Unsupported(storage.Emulated, m.Kind())
	}
	if err != nil {
		return storage.Result{}, fmt.Errorf("%s: %w", m.Kind(), err)
	}
	return res, nil
}

func checkUser(m storage.InsertUser) error {
	switch m.Role {
	case models.RoleFamily:
		if m.Subrole != nil {
			return errs.Invalid("subrole", "must be empty for family accounts")
		}
	case models.RoleCaregiver:
		if m.Subrole == nil {
			return errs.Invalid("subrole", "is required for caregivers")
		}
		if *m.Subrole != models.SubroleFormal && *m.Subrole != models.SubroleInformal {
			return errs.Invalid("subrole", fmt.Sprintf("unknown subrole %q", *m.Subrole))
		}
	default:
		return errs.Invalid("role", fmt.Sprintf("unknown role %q", m.Role))
	}
	return nil
}

func (b *Backend) insertUser(ctx context.Context, m storage.InsertUser) (storage.Result, error) {
	if err := checkUser(m); err != nil {
		return storage.Result{}, err
	}
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return storage.Result{}, err
	}
	if m.NationalID != nil {
		for _, u := range users {
			if sameString(u.NationalID, *m.NationalID) {
				return storage.Result{}, fmt.Errorf("national_id %q: %w", *m.NationalID, errs.ErrConflict)
			}
		}
	}
	c, err := loadCounters(ctx, b.store)
	if err != nil {
		return storage.Result{}, err
	}

	c.Users++
	users = append(users, userRow{
		ID:               c.Users,
		Name:             m.Name,
		NationalID:       m.NationalID,
		Email:            m.Email,
		CredentialDigest: m.CredentialDigest,
		Role:             m.Role,
		Subrole:          m.Subrole,
		CreatedAt:        storage.FormatTime(m.CreatedAt),
	})
	if err := b.commit(ctx, usersKey, users, &c); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{GeneratedID: c.Users, Affected: 1}, nil
}

// requireUser and requireElder emulate foreign keys.
func (b *Backend) requireUser(ctx context.Context, field string, id int64) error {
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == id {
			return nil
		}
	}
	return errs.Invalid(field, fmt.Sprintf("user %d does not exist", id))
}

func (b *Backend) requireElder(ctx context.Context, id int64) error {
	elders, err := load[elderRow](ctx, b.store, eldersKey)
	if err != nil {
		return err
	}
	for _, e := range elders {
		if e.ID == id {
			return nil
		}
	}
	return errs.Invalid("elder_id", fmt.Sprintf("elder %d does not exist", id))
}

func (b *Backend) insertElder(ctx context.Context, m storage.InsertElder) (storage.Result, error) {
	if m.FullName == "" {
		return storage.Result{}, errs.Invalid("full_name", "is required")
	}
	if err := b.requireUser(ctx, "responsible_family_id", m.ResponsibleFamilyID); err != nil {
		return storage.Result{}, err
	}
	elders, err := load[elderRow](ctx, b.store, eldersKey)
	if err != nil {
		return storage.Result{}, err
	}
	c, err := loadCounters(ctx, b.store)
	if err != nil {
		return storage.Result{}, err
	}

	c.Elders++
	elders = append(elders, elderRow{
		ID:                  c.Elders,
		FullName:            m.FullName,
		Age:                 m.Age,
		Address:             m.Address,
		MedicalConditions:   m.MedicalConditions,
		Allergies:           m.Allergies,
		Notes:               m.Notes,
		ResponsibleFamilyID: m.ResponsibleFamilyID,
	})
	if err := b.commit(ctx, eldersKey, elders, &c); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{GeneratedID: c.Elders, Affected: 1}, nil
}

func (b *Backend) updateElder(ctx context.Context, m storage.UpdateElder) (storage.Result, error) {
	elders, err := load[elderRow](ctx, b.store, eldersKey)
	if err != nil {
		return storage.Result{}, err
	}
	var affected int64
	for i := range elders {
		if elders[i].ID != m.ElderID {
			continue
		}
		if m.FullName == "" {
			return storage.Result{}, errs.Invalid("full_name", "is required")
		}
		e := &elders[i]
		e.FullName = m.FullName
		e.Age = m.Age
		e.Address = m.Address
		e.MedicalConditions = m.MedicalConditions
		e.Allergies = m.Allergies
		e.Notes = m.Notes
		affected++
	}
	if affected == 0 {
		return storage.Result{}, nil
	}
	if err := b.commit(ctx, eldersKey, elders, nil); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{Affected: affected}, nil
}

func checkReminder(name, time string) error {
	if name == "" {
		return errs.Invalid("name", "is required")
	}
	if time == "" {
		return errs.Invalid("time", "is required")
	}
	return nil
}

func (b *Backend) insertReminder(ctx context.Context, m storage.InsertReminder) (storage.Result, error) {
	if err := checkReminder(m.Name, m.Time); err != nil {
		return storage.Result{}, err
	}
	if err := b.requireElder(ctx, m.ElderID); err != nil {
		return storage.Result{}, err
	}
	reminders, err := load[reminderRow](ctx, b.store, remindersKey)
	if err != nil {
		return storage.Result{}, err
	}
	c, err := loadCounters(ctx, b.store)
	if err != nil {
		return storage.Result{}, err
	}

	c.MedicationReminders++
	reminders = append(reminders, reminderRow{
		ID:      c.MedicationReminders,
		ElderID: m.ElderID,
		Name:    m.Name,
		Time:    m.Time,
	})
	if err := b.commit(ctx, remindersKey, reminders, &c); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{GeneratedID: c.MedicationReminders, Affected: 1}, nil
}

func (b *Backend) updateReminder(ctx context.Context, m storage.UpdateReminder) (storage.Result, error) {
	reminders, err := load[reminderRow](ctx, b.store, remindersKey)
	if err != nil {
		return storage.Result{}, err
	}
	var affected int64
	for i := range reminders {
		if reminders[i].ID != m.ReminderID {
			continue
		}
		if err := checkReminder(m.Name, m.Time); err != nil {
			return storage.Result{}, err
		}
		reminders[i].Name = m.Name
		reminders[i].Time = m.Time
		affected++
	}
	if affected == 0 {
		return storage.Result{}, nil
	}
	if err := b.commit(ctx, remindersKey, reminders, nil); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{Affected: affected}, nil
}

func (b *Backend) deleteReminder(ctx context.Context, m storage.DeleteReminder) (storage.Result, error) {
	reminders, err := load[reminderRow](ctx, b.store, remindersKey)
	if err != nil {
		return storage.Result{}, err
	}
	kept := reminders[:0]
	for _, r := range reminders {
		if r.ID != m.ReminderID {
			kept = append(kept, r)
		}
	}
	affected := int64(len(reminders) - len(kept))
	if affected == 0 {
		return storage.Result{}, nil
	}
	if err := b.commit(ctx, remindersKey, kept, nil); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{Affected: affected}, nil
}

// replaceLinkCode drops every code of the same elder, and any row already
// holding the same code, before appending the new one.
func (b *Backend) replaceLinkCode(ctx context.Context, m storage.ReplaceLinkCode) (storage.Result, error) {
	if err := b.requireElder(ctx, m.ElderID); err != nil {
		return storage.Result{}, err
	}
	if err := b.requireUser(ctx, "created_by", m.CreatedBy); err != nil {
		return storage.Result{}, err
	}
	codes, err := load[codeRow](ctx, b.store, linkCodesKey)
	if err != nil {
		return storage.Result{}, err
	}
	kept := codes[:0]
	for _, c := range codes {
		if c.ElderID != m.ElderID && c.Code != m.Code {
			kept = append(kept, c)
		}
	}
	kept = append(kept, codeRow{
		Code:      m.Code,
		ElderID:   m.ElderID,
		CreatedBy: m.CreatedBy,
		CreatedAt: storage.FormatTime(m.CreatedAt),
	})
	if err := b.commit(ctx, linkCodesKey, kept, nil); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{Affected: 1}, nil
}

func (b *Backend) insertCaregiverLink(ctx context.Context, m storage.InsertCaregiverLink) (storage.Result, error) {
	if err := b.requireElder(ctx, m.ElderID); err != nil {
		return storage.Result{}, err
	}
	if err := b.requireUser(ctx, "caregiver_id", m.CaregiverID); err != nil {
		return storage.Result{}, err
	}
	links, err := load[linkRow](ctx, b.store, linksKey)
	if err != nil {
		return storage.Result{}, err
	}
	for _, l := range links {
		if l.ElderID == m.ElderID && l.CaregiverID == m.CaregiverID {
			return storage.Result{}, fmt.Errorf("caregiver %d already linked to elder %d: %w",
				m.CaregiverID, m.ElderID, errs.ErrConflict)
		}
	}
	c, err := loadCounters(ctx, b.store)
	if err != nil {
		return storage.Result{}, err
	}

	c.CaregiverLinks++
	links = append(links, linkRow{ID: c.CaregiverLinks, ElderID: m.ElderID, CaregiverID: m.CaregiverID})
	if err := b.commit(ctx, linksKey, links, &c); err != nil {
		return storage.Result{}, err
	}
	return storage.Result{GeneratedID: c.CaregiverLinks, Affected: 1}, nil
}
