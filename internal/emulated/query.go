package emulated

import (
	"cmp"
	"context"
	"slices"

	"eldercare/internal/storage"
)

// Query answers q by filtering, joining and sorting the decoded collections.
// Results are projected on q.Columns() so they match the engine row for row.
func (b *Backend) Query(ctx context.Context, q storage.Query) ([]storage.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var (
		records []storage.Record
		err     error
	)
	switch q := q.(type) {
	case storage.FindUserByIdentifier:
		records, err = b.findUserByIdentifier(ctx, q.Identifier)
	case storage.FindUserSummaryByNationalID:
		records, err = b.findUserByNationalID(ctx, q.NationalID)
	case storage.ListEldersByFamily:
		records, err = b.listElders(ctx, func(r elderRow) bool { return r.ResponsibleFamilyID == q.FamilyID })
	case storage.FindElderByID:
		records, err = b.listElders(ctx, func(r elderRow) bool { return r.ID == q.ElderID })
	case storage.ListRemindersByElder:
		records, err = b.listReminders(ctx, q.ElderID)
	case storage.ListCaregiversForElder:
		records, err = b.listCaregivers(ctx, q.ElderID)
	case storage.FindLinkCodeByCode:
		records, err = b.findLinkCode(ctx, q.Code)
	case storage.FindCaregiverLink:
		records, err = b.findCaregiverLink(ctx, q.ElderID, q.CaregiverID)
	case storage.ListEldersForCaregiver:
		records, err = b.listEldersForCaregiver(ctx, q.CaregiverID)
	default:
		return nil, storage.Unsupported(storage.Emulated, q.Kind())
	}
	if err != nil {
		return nil, err
	}

	cols := q.Columns()
	out := make([]storage.Record, len(records))
	for i, r := range records {
		out[i] = r.Project(cols)
	}
	return out, nil
}

func (b *Backend) findUserByIdentifier(ctx context.Context, identifier string) ([]storage.Record, error) {
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return nil, err
	}
	var match *userRow
	for i, u := range users {
		if !sameString(u.NationalID, identifier) && u.Name != identifier {
			continue
		}
		if match == nil || u.ID < match.ID {
			match = &users[i]
		}
	}
	if match == nil {
		return nil, nil
	}
	return []storage.Record{match.record()}, nil
}

func (b *Backend) findUserByNationalID(ctx context.Context, nationalID string) ([]storage.Record, error) {
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if sameString(u.NationalID, nationalID) {
			return []storage.Record{u.record()}, nil
		}
	}
	return nil, nil
}

// listElders returns the matching elders by descending id.
func (b *Backend) listElders(ctx context.Context, match func(elderRow) bool) ([]storage.Record, error) {
	elders, err := load[elderRow](ctx, b.store, eldersKey)
	if err != nil {
		return nil, err
	}
	var matched []elderRow
	for _, e := range elders {
		if match(e) {
			matched = append(matched, e)
		}
	}
	slices.SortFunc(matched, func(x, y elderRow) int { return cmp.Compare(y.ID, x.ID) })

	records := make([]storage.Record, len(matched))
	for i, e := range matched {
		records[i] = e.record()
	}
	return records, nil
}

func (b *Backend) listReminders(ctx context.Context, elderID int64) ([]storage.Record, error) {
	reminders, err := load[reminderRow](ctx, b.store, remindersKey)
	if err != nil {
		return nil, err
	}
	var matched []reminderRow
	for _, r := range reminders {
		if r.ElderID == elderID {
			matched = append(matched, r)
		}
	}
	slices.SortFunc(matched, func(x, y reminderRow) int {
		return cmp.Or(cmp.Compare(x.Time, y.Time), cmp.Compare(x.ID, y.ID))
	})

	records := make([]storage.Record, len(matched))
	for i, r := range matched {
		records[i] = r.record()
	}
	return records, nil
}

// linksWhere returns the links accepted by match, by ascending link id.
func (b *Backend) linksWhere(ctx context.Context, match func(linkRow) bool) ([]linkRow, error) {
	links, err := load[linkRow](ctx, b.store, linksKey)
	if err != nil {
		return nil, err
	}
	var matched []linkRow
	for _, l := range links {
		if match(l) {
			matched = append(matched, l)
		}
	}
	slices.SortFunc(matched, func(x, y linkRow) int { return cmp.Compare(x.ID, y.ID) })
	return matched, nil
}

func (b *Backend) listCaregivers(ctx context.Context, elderID int64) ([]storage.Record, error) {
	links, err := b.linksWhere(ctx, func(l linkRow) bool { return l.ElderID == elderID })
	if err != nil {
		return nil, err
	}
	users, err := load[userRow](ctx, b.store, usersKey)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]userRow, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var records []storage.Record
	for _, l := range links {
		if u, ok := byID[l.CaregiverID]; ok {
			records = append(records, u.record())
		}
	}
	return records, nil
}

func (b *Backend) findLinkCode(ctx context.Context, code string) ([]storage.Record, error) {
	codes, err := load[codeRow](ctx, b.store, linkCodesKey)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		if c.Code == code {
			return []storage.Record{c.record()}, nil
		}
	}
	return nil, nil
}

func (b *Backend) findCaregiverLink(ctx context.Context, elderID, caregiverID int64) ([]storage.Record, error) {
	links, err := b.linksWhere(ctx, func(l linkRow) bool {
		return l.ElderID == elderID && l.CaregiverID == caregiverID
	})
	if err != nil || len(links) == 0 {
		return nil, err
	}
	return []storage.Record{{"id": links[0].ID}}, nil
}

func (b *Backend) listEldersForCaregiver(ctx context.Context, caregiverID int64) ([]storage.Record, error) {
	links, err := b.linksWhere(ctx, func(l linkRow) bool { return l.CaregiverID == caregiverID })
	if err != nil {
		return nil, err
	}
	linked := make(map[int64]bool, len(links))
	for _, l := range links {
		linked[l.ElderID] = true
	}
	return b.listElders(ctx, func(e elderRow) bool { return linked[e.ID] })
}
