package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eldercare/internal/emulated"
	"eldercare/internal/errs"
	"eldercare/internal/kv"
	"eldercare/internal/storage"
	"eldercare/internal/storage/storagetest"
)

// step is one observable outcome of a scripted call.
type step struct {
	Op      string
	Result  storage.Result
	Err     string
	Records []storage.Record
}

type recorder struct {
	d     *storage.Dispatcher
	steps []step
}

func errClass(err error) string {
	for _, sentinel := range []error{
		errs.ErrValidation,
		errs.ErrConflict,
		errs.ErrNotFound,
		errs.ErrUnsupportedOperation,
		errs.ErrBackendUnavailable,
		errs.ErrIO,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if err != nil {
		return "unclassified"
	}
	return ""
}

func (r *recorder) mutate(m storage.Mutation) int64 {
	res, err := r.d.Mutate(context.Background(), m)
	r.steps = append(r.steps, step{Op: m.Kind().String(), Result: res, Err: errClass(err)})
	return res.GeneratedID
}

func (r *recorder) query(q storage.Query) {
	records, err := r.d.Query(context.Background(), q)
	r.steps = append(r.steps, step{Op: q.Kind().String(), Err: errClass(err), Records: records})
}

func ptr[T any](v T) *T { return &v }

// replay runs one fixed script of writes and reads and returns every outcome.
func replay(t *testing.T, factory storagetest.Factory) []step {
	t.Helper()
	r := &recorder{d: storagetest.Open(t, factory)}
	at := time.Date(2024, 6, 2, 14, 0, 0, 123000000, time.UTC)

	ana := r.mutate(storage.InsertUser{Name: "Ana", NationalID: ptr("111"), Email: ptr("ana@example.com"), CredentialDigest: "d1", Role: "family", CreatedAt: at})
	bia := r.mutate(storage.InsertUser{Name: "Bia", NationalID: ptr("333"), CredentialDigest: "d3", Role: "family", CreatedAt: at})
	renato := r.mutate(storage.InsertUser{Name: "Renato", NationalID: ptr("222"), CredentialDigest: "d2", Role: "caregiver", Subrole: ptr("formal"), CreatedAt: at})
	lia := r.mutate(storage.InsertUser{Name: "Lia", CredentialDigest: "d4", Role: "caregiver", Subrole: ptr("informal"), CreatedAt: at})
	r.mutate(storage.InsertUser{Name: "Dup", NationalID: ptr("111"), CredentialDigest: "d5", Role: "family", CreatedAt: at})
	r.mutate(storage.InsertUser{Name: "Bad", CredentialDigest: "d6", Role: "caregiver", CreatedAt: at})

	carlos := r.mutate(storage.InsertElder{FullName: "Sr. Carlos", Age: ptr(int64(82)), Notes: ptr("likes tea"), ResponsibleFamilyID: ana})
	maria := r.mutate(storage.InsertElder{FullName: "Dona Maria", ResponsibleFamilyID: ana})
	joao := r.mutate(storage.InsertElder{FullName: "Seu João", Allergies: ptr("penicillin"), ResponsibleFamilyID: bia})
	r.mutate(storage.InsertElder{FullName: "Ghost", ResponsibleFamilyID: 999})
	r.mutate(storage.UpdateElder{ElderID: carlos, FullName: "Carlos Souza", Age: ptr(int64(83)), Address: ptr("Rua A, 10")})
	r.mutate(storage.UpdateElder{ElderID: 999, FullName: "Nobody"})

	r1 := r.mutate(storage.InsertReminder{ElderID: carlos, Name: "Losartan", Time: "20:00"})
	r.mutate(storage.InsertReminder{ElderID: carlos, Name: "Metformin", Time: "08:00"})
	r.mutate(storage.InsertReminder{ElderID: carlos, Name: "Aspirin", Time: "08:00"})
	r3 := r.mutate(storage.InsertReminder{ElderID: maria, Name: "Vitamin D", Time: "12:00"})
	r.mutate(storage.InsertReminder{ElderID: 999, Name: "Orphan", Time: "12:00"})
	r.mutate(storage.UpdateReminder{ReminderID: r1, Name: "Losartan", Time: "07:30"})
	r.mutate(storage.DeleteReminder{ReminderID: r3})
	r.mutate(storage.DeleteReminder{ReminderID: r3})

	r.mutate(storage.ReplaceLinkCode{Code: "AAAAAA-1", ElderID: carlos, CreatedBy: ana, CreatedAt: at})
	r.mutate(storage.ReplaceLinkCode{Code: "BBBBBB-1", ElderID: carlos, CreatedBy: ana, CreatedAt: at.Add(time.Minute)})
	r.mutate(storage.ReplaceLinkCode{Code: "CCCCCC-2", ElderID: maria, CreatedBy: ana, CreatedAt: at})

	r.mutate(storage.InsertCaregiverLink{ElderID: carlos, CaregiverID: lia})
	r.mutate(storage.InsertCaregiverLink{ElderID: carlos, CaregiverID: renato})
	r.mutate(storage.InsertCaregiverLink{ElderID: joao, CaregiverID: renato})
	r.mutate(storage.InsertCaregiverLink{ElderID: carlos, CaregiverID: renato})
	r.mutate(storage.InsertCaregiverLink{ElderID: 999, CaregiverID: renato})

	for _, identifier := range []string{"111", "Ana", "Lia", "nobody"} {
		r.query(storage.FindUserByIdentifier{Identifier: identifier})
	}
	for _, nationalID := range []string{"222", "444"} {
		r.query(storage.FindUserSummaryByNationalID{NationalID: nationalID})
	}
	for _, family := range []int64{ana, bia, renato} {
		r.query(storage.ListEldersByFamily{FamilyID: family})
	}
	for _, elder := range []int64{carlos, maria, joao, 999} {
		r.query(storage.FindElderByID{ElderID: elder})
		r.query(storage.ListRemindersByElder{ElderID: elder})
		r.query(storage.ListCaregiversForElder{ElderID: elder})
	}
	for _, code := range []string{"AAAAAA-1", "BBBBBB-1", "CCCCCC-2"} {
		r.query(storage.FindLinkCodeByCode{Code: code})
	}
	r.query(storage.FindCaregiverLink{ElderID: carlos, CaregiverID: renato})
	r.query(storage.FindCaregiverLink{ElderID: maria, CaregiverID: renato})
	for _, caregiver := range []int64{renato, lia, ana} {
		r.query(storage.ListEldersForCaregiver{CaregiverID: caregiver})
	}
	return r.steps
}

func requireEquivalent(t *testing.T, a, b storagetest.Factory) {
	t.Helper()
	want := replay(t, a)
	got := replay(t, b)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i], got[i], "step %d (%s)", i, want[i].Op)
	}
}

func TestEquivalence_MemoryAndBolt(t *testing.T) {
	requireEquivalent(t,
		func(t *testing.T) storage.Backend { return emulated.New(kv.NewMemory()) },
		func(t *testing.T) storage.Backend {
			db, err := kv.OpenBolt(filepath.Join(t.TempDir(), "eldercare.kv"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return emulated.New(db.Bucket("data"))
		},
	)
}
