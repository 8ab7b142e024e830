// Package storagetest holds the behaviour every storage.Backend must share.
// Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eldercare/internal/errs"
	"eldercare/internal/storage"
)

// Factory returns a fresh, empty backend. The returned backend is closed by
// the suite.
type Factory func(t *testing.T) storage.Backend

// Now is the fixed creation time used by the suite.
var Now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// Open wraps a fresh backend in an initialized dispatcher.
func Open(t *testing.T, factory Factory) *storage.Dispatcher {
	t.Helper()
	d := storage.NewDispatcher(factory(t), zap.NewNop())
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.InitSchema(context.Background()))
	return d
}

func ptr[T any](v T) *T { return &v }

// AddFamily inserts a family user and returns its id.
func AddFamily(t *testing.T, d *storage.Dispatcher, name, nationalID string) int64 {
	t.Helper()
	res, err := d.Mutate(context.Background(), storage.InsertUser{
		Name:             name,
		NationalID:       ptr(nationalID),
		CredentialDigest: "digest-" + nationalID,
		Role:             "family",
		CreatedAt:        Now,
	})
	require.NoError(t, err)
	return res.GeneratedID
}

// AddCaregiver inserts a caregiver user and returns its id.
func AddCaregiver(t *testing.T, d *storage.Dispatcher, name, nationalID, subrole string) int64 {
	t.Helper()
	res, err := d.Mutate(context.Background(), storage.InsertUser{
		Name:             name,
		NationalID:       ptr(nationalID),
		CredentialDigest: "digest-" + nationalID,
		Role:             "caregiver",
		Subrole:          ptr(subrole),
		CreatedAt:        Now,
	})
	require.NoError(t, err)
	return res.GeneratedID
}

// AddElder inserts an elder with only a name and returns its id.
func AddElder(t *testing.T, d *storage.Dispatcher, familyID int64, fullName string) int64 {
	t.Helper()
	res, err := d.Mutate(context.Background(), storage.InsertElder{
		FullName:            fullName,
		ResponsibleFamilyID: familyID,
	})
	require.NoError(t, err)
	return res.GeneratedID
}

func ids(records []storage.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.Int64("id")
	}
	return out
}

// Run executes the backend contract against factory.
func Run(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("refuses calls before schema init", func(t *testing.T) {
		d := storage.NewDispatcher(factory(t), zap.NewNop())
		t.Cleanup(func() { _ = d.Close() })

		_, err := d.Query(ctx, storage.FindElderByID{ElderID: 1})
		require.ErrorIs(t, err, errs.ErrBackendUnavailable)
		_, err = d.Mutate(ctx, storage.DeleteReminder{ReminderID: 1})
		require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	})

	t.Run("schema init is idempotent", func(t *testing.T) {
		d := Open(t, factory)
		first := AddFamily(t, d, "Ana", "111")

		require.NoError(t, d.InitSchema(ctx))

		rec, err := d.QueryOne(ctx, storage.FindUserByIdentifier{Identifier: "111"})
		require.NoError(t, err)
		require.Equal(t, first, rec.Int64("id"))

		second := AddFamily(t, d, "Bia", "222")
		require.Greater(t, second, first)
	})

	t.Run("find user by national id or name", func(t *testing.T) {
		d := Open(t, factory)
		id := AddFamily(t, d, "Ana", "111")

		for _, identifier := range []string{"111", "Ana"} {
			rec, err := d.QueryOne(ctx, storage.FindUserByIdentifier{Identifier: identifier})
			require.NoError(t, err)
			require.Equal(t, storage.Record{
				"id":                id,
				"name":              "Ana",
				"national_id":       "111",
				"email":             nil,
				"credential_digest": "digest-111",
				"role":              "family",
				"subrole":           nil,
				"created_at":        storage.FormatTime(Now),
			}, rec)
			require.True(t, rec.Time("created_at").Equal(Now))
		}

		_, err := d.QueryOne(ctx, storage.FindUserByIdentifier{Identifier: "999"})
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("lowest id wins on identifier ties", func(t *testing.T) {
		d := Open(t, factory)
		first := AddFamily(t, d, "Ana", "111")
		AddFamily(t, d, "Ana", "222")

		records, err := d.Query(ctx, storage.FindUserByIdentifier{Identifier: "Ana"})
		require.NoError(t, err)
		require.Equal(t, []int64{first}, ids(records))
	})

	t.Run("user summary projection", func(t *testing.T) {
		d := Open(t, factory)
		id := AddCaregiver(t, d, "Renato", "333", "formal")

		rec, err := d.QueryOne(ctx, storage.FindUserSummaryByNationalID{NationalID: "333"})
		require.NoError(t, err)
		require.Equal(t, storage.Record{
			"id":          id,
			"name":        "Renato",
			"national_id": "333",
			"role":        "caregiver",
			"subrole":     "formal",
		}, rec)
	})

	t.Run("national id conflict", func(t *testing.T) {
		d := Open(t, factory)
		AddFamily(t, d, "Ana", "111")

		_, err := d.Mutate(ctx, storage.InsertUser{
			Name: "Other", NationalID: ptr("111"), CredentialDigest: "x", Role: "family", CreatedAt: Now,
		})
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("national id may be absent on many users", func(t *testing.T) {
		d := Open(t, factory)
		for _, name := range []string{"A", "B"} {
			_, err := d.Mutate(ctx, storage.InsertUser{
				Name: name, CredentialDigest: "x", Role: "family", CreatedAt: Now,
			})
			require.NoError(t, err)
		}
	})

	t.Run("text must be valid UTF-8", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "José", "café-1")

		for range 2 {
			_, err := d.Mutate(ctx, storage.InsertUser{
				Name: "Other", NationalID: ptr("111\xff"), CredentialDigest: "x", Role: "family", CreatedAt: Now,
			})
			require.ErrorIs(t, err, errs.ErrValidation)
		}
		_, err := d.Mutate(ctx, storage.InsertElder{
			FullName: "Carlos", Notes: ptr("caf\xe9"), ResponsibleFamilyID: family,
		})
		require.ErrorIs(t, err, errs.ErrValidation)
		_, err = d.Mutate(ctx, storage.InsertReminder{ElderID: 1, Name: "Metformin", Time: "08:00\xff"})
		require.ErrorIs(t, err, errs.ErrValidation)

		records, err := d.Query(ctx, storage.FindUserSummaryByNationalID{NationalID: "café-1"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, "José", records[0]["name"])

		elders, err := d.Query(ctx, storage.ListEldersByFamily{FamilyID: family})
		require.NoError(t, err)
		require.Empty(t, elders)
	})

	t.Run("role constraints", func(t *testing.T) {
		d := Open(t, factory)
		tests := []struct {
			name    string
			role    string
			subrole *string
		}{
			{"caregiver without subrole", "caregiver", nil},
			{"family with subrole", "family", ptr("formal")},
			{"unknown role", "admin", nil},
			{"unknown subrole", "caregiver", ptr("nurse")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := d.Mutate(ctx, storage.InsertUser{
					Name: "X", CredentialDigest: "x", Role: tt.role, Subrole: tt.subrole, CreatedAt: Now,
				})
				require.ErrorIs(t, err, errs.ErrValidation)
			})
		}
	})

	t.Run("elder constraints", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")

		_, err := d.Mutate(ctx, storage.InsertElder{FullName: "", ResponsibleFamilyID: family})
		require.ErrorIs(t, err, errs.ErrValidation)

		_, err = d.Mutate(ctx, storage.InsertElder{FullName: "Carlos", ResponsibleFamilyID: family + 100})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("elders by family newest first", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		other := AddFamily(t, d, "Bia", "222")
		e1 := AddElder(t, d, family, "Carlos")
		AddElder(t, d, other, "Dora")
		e3 := AddElder(t, d, family, "Elza")

		records, err := d.Query(ctx, storage.ListEldersByFamily{FamilyID: family})
		require.NoError(t, err)
		require.Equal(t, []int64{e3, e1}, ids(records))

		records, err = d.Query(ctx, storage.ListEldersByFamily{FamilyID: family + other + 100})
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("elder round trip and update", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		res, err := d.Mutate(ctx, storage.InsertElder{
			FullName:            "Carlos",
			Age:                 ptr(int64(82)),
			Allergies:           ptr("penicillin"),
			ResponsibleFamilyID: family,
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), res.Affected)

		rec, err := d.QueryOne(ctx, storage.FindElderByID{ElderID: res.GeneratedID})
		require.NoError(t, err)
		require.Equal(t, storage.Record{
			"id":                    res.GeneratedID,
			"full_name":             "Carlos",
			"age":                   int64(82),
			"address":               nil,
			"medical_conditions":    nil,
			"allergies":             "penicillin",
			"notes":                 nil,
			"responsible_family_id": family,
		}, rec)

		upd, err := d.Mutate(ctx, storage.UpdateElder{
			ElderID: res.GeneratedID, FullName: "Carlos Souza", Notes: ptr("likes tea"),
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), upd.Affected)

		rec, err = d.QueryOne(ctx, storage.FindElderByID{ElderID: res.GeneratedID})
		require.NoError(t, err)
		require.Equal(t, "Carlos Souza", rec.String("full_name"))
		require.Nil(t, rec["age"])
		require.Nil(t, rec["allergies"])
		require.Equal(t, "likes tea", rec.String("notes"))
		require.Equal(t, family, rec.Int64("responsible_family_id"))

		upd, err = d.Mutate(ctx, storage.UpdateElder{ElderID: res.GeneratedID + 100, FullName: "Nobody"})
		require.NoError(t, err)
		require.Zero(t, upd.Affected)

		_, err = d.Mutate(ctx, storage.UpdateElder{ElderID: res.GeneratedID, FullName: ""})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("reminders by time then id", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		elder := AddElder(t, d, family, "Carlos")

		var added []int64
		for _, r := range []struct{ name, time string }{
			{"Losartan", "20:00"},
			{"Metformin", "08:00"},
			{"Vitamin D", "08:00"},
		} {
			res, err := d.Mutate(ctx, storage.InsertReminder{ElderID: elder, Name: r.name, Time: r.time})
			require.NoError(t, err)
			added = append(added, res.GeneratedID)
		}

		records, err := d.Query(ctx, storage.ListRemindersByElder{ElderID: elder})
		require.NoError(t, err)
		require.Equal(t, []int64{added[1], added[2], added[0]}, ids(records))
		require.Equal(t, storage.Record{
			"id": added[1], "elder_id": elder, "name": "Metformin", "time": "08:00",
		}, records[0])

		res, err := d.Mutate(ctx, storage.UpdateReminder{ReminderID: added[0], Name: "Losartan", Time: "07:00"})
		require.NoError(t, err)
		require.Equal(t, int64(1), res.Affected)

		res, err = d.Mutate(ctx, storage.DeleteReminder{ReminderID: added[2]})
		require.NoError(t, err)
		require.Equal(t, int64(1), res.Affected)

		records, err = d.Query(ctx, storage.ListRemindersByElder{ElderID: elder})
		require.NoError(t, err)
		require.Equal(t, []int64{added[0], added[1]}, ids(records))

		res, err = d.Mutate(ctx, storage.DeleteReminder{ReminderID: added[2]})
		require.NoError(t, err)
		require.Zero(t, res.Affected)

		res, err = d.Mutate(ctx, storage.UpdateReminder{ReminderID: added[2], Name: "x", Time: "09:00"})
		require.NoError(t, err)
		require.Zero(t, res.Affected)
	})

	t.Run("reminder constraints", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		elder := AddElder(t, d, family, "Carlos")

		_, err := d.Mutate(ctx, storage.InsertReminder{ElderID: elder, Name: "", Time: "08:00"})
		require.ErrorIs(t, err, errs.ErrValidation)
		_, err = d.Mutate(ctx, storage.InsertReminder{ElderID: elder, Name: "Metformin", Time: ""})
		require.ErrorIs(t, err, errs.ErrValidation)
		_, err = d.Mutate(ctx, storage.InsertReminder{ElderID: elder + 100, Name: "Metformin", Time: "08:00"})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("link code replaces the previous one", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		elder := AddElder(t, d, family, "Carlos")
		later := Now.Add(time.Hour)

		_, err := d.Mutate(ctx, storage.ReplaceLinkCode{Code: "AAAAAA-1", ElderID: elder, CreatedBy: family, CreatedAt: Now})
		require.NoError(t, err)
		res, err := d.Mutate(ctx, storage.ReplaceLinkCode{Code: "BBBBBB-1", ElderID: elder, CreatedBy: family, CreatedAt: later})
		require.NoError(t, err)
		require.Equal(t, int64(1), res.Affected)

		_, err = d.QueryOne(ctx, storage.FindLinkCodeByCode{Code: "AAAAAA-1"})
		require.ErrorIs(t, err, errs.ErrNotFound)

		rec, err := d.QueryOne(ctx, storage.FindLinkCodeByCode{Code: "BBBBBB-1"})
		require.NoError(t, err)
		require.Equal(t, storage.Record{
			"code":       "BBBBBB-1",
			"elder_id":   elder,
			"created_by": family,
			"created_at": storage.FormatTime(later),
		}, rec)

		_, err = d.Mutate(ctx, storage.ReplaceLinkCode{Code: "CCCCCC-9", ElderID: elder + 100, CreatedBy: family, CreatedAt: Now})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("caregiver links", func(t *testing.T) {
		d := Open(t, factory)
		family := AddFamily(t, d, "Ana", "111")
		renato := AddCaregiver(t, d, "Renato", "333", "formal")
		lucia := AddCaregiver(t, d, "Lucia", "444", "informal")
		e1 := AddElder(t, d, family, "Carlos")
		e2 := AddElder(t, d, family, "Dora")

		for _, link := range []storage.InsertCaregiverLink{
			{ElderID: e1, CaregiverID: lucia},
			{ElderID: e1, CaregiverID: renato},
			{ElderID: e2, CaregiverID: renato},
		} {
			res, err := d.Mutate(ctx, link)
			require.NoError(t, err)
			require.NotZero(t, res.GeneratedID)
		}

		_, err := d.Mutate(ctx, storage.InsertCaregiverLink{ElderID: e1, CaregiverID: renato})
		require.ErrorIs(t, err, errs.ErrConflict)
		_, err = d.Mutate(ctx, storage.InsertCaregiverLink{ElderID: e1, CaregiverID: renato + 100})
		require.ErrorIs(t, err, errs.ErrValidation)

		records, err := d.Query(ctx, storage.ListCaregiversForElder{ElderID: e1})
		require.NoError(t, err)
		require.Equal(t, []storage.Record{
			{"id": lucia, "name": "Lucia", "subrole": "informal"},
			{"id": renato, "name": "Renato", "subrole": "formal"},
		}, records)

		records, err = d.Query(ctx, storage.FindCaregiverLink{ElderID: e2, CaregiverID: renato})
		require.NoError(t, err)
		require.Len(t, records, 1)

		records, err = d.Query(ctx, storage.FindCaregiverLink{ElderID: e2, CaregiverID: lucia})
		require.NoError(t, err)
		require.Empty(t, records)

		records, err = d.Query(ctx, storage.ListEldersForCaregiver{CaregiverID: renato})
		require.NoError(t, err)
		require.Equal(t, []int64{e2, e1}, ids(records))
	})
}
