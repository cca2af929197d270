package memory

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicai/internal/store"
	"medicai/pkg"
)

func newTestService(t *testing.T) (*Service, *store.Mem) {
	t.Helper()
	st := store.NewMem()
	svc := NewService(st, zerolog.Nop())
	return svc, st
}

func seedPatient(t *testing.T, st *store.Mem, id int, name string) {
	t.Helper()
	p := pkg.Patient{PatientID: id, Name: name, DateOfBirth: "1960-05-12"}
	require.NoError(t, st.Upsert(context.Background(), store.Patients, strconv.Itoa(id), p))
}

func seedClinic(t *testing.T, st *store.Mem) {
	seedPatient(t, st, 12345, "Brigid O'Sullivan")
	seedPatient(t, st, 12346, "Cian Murphy")
	seedPatient(t, st, 12347, "Orla Flanagan")
}

func TestResolveNumericIdentifier(t *testing.T) {
	svc, _ := newTestService(t)
	// numeric identifiers pass through without an existence check
	id, err := svc.Resolve(context.Background(), "99999")
	require.NoError(t, err)
	assert.Equal(t, 99999, id)
}

func TestResolveByNameSubstring(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)

	id, err := svc.Resolve(context.Background(), "Cian")
	require.NoError(t, err)
	assert.Equal(t, 12346, id)

	id, err = svc.Resolve(context.Background(), "o'sullivan")
	require.NoError(t, err)
	assert.Equal(t, 12345, id)
}

func TestResolveNotFound(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)

	_, err := svc.Resolve(context.Background(), "NonExistent Patient")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestProfileNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Profile(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestProfileAssemblesAllCollections(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	require.NoError(t, svc.AddConsultation(ctx, 12345, "Dr. Byrne", "Routine checkup"))
	require.NoError(t, svc.AddMedication(ctx, 12345, "Metformin 500mg", "", ""))
	require.NoError(t, svc.AddAllergy(ctx, 12345, "Penicillin", SeveritySevere, "rash and swelling"))
	require.NoError(t, svc.AddPreference(ctx, 12345, CategoryScheduling, "Morning appointments", ""))

	profile, err := svc.Profile(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "Brigid O'Sullivan", profile.PatientInfo.Name)
	require.Len(t, profile.Consultations, 1)
	assert.Equal(t, "Routine checkup", profile.Consultations[0].Notes)
	require.Len(t, profile.Medications, 1)
	assert.Equal(t, "active", profile.Medications[0].Status)
	require.Len(t, profile.Allergies, 1)
	assert.Equal(t, SeveritySevere, profile.Allergies[0].Severity)
	require.Len(t, profile.Preferences, 1)

	// a fresh patient still gets empty slices, not nils
	empty, err := svc.Profile(ctx, 12347)
	require.NoError(t, err)
	assert.NotNil(t, empty.Consultations)
	assert.Empty(t, empty.Consultations)
}

// faultyStore wraps the in-memory store and fails selected reads, standing
// in for a database that is reachable for some queries but not others.
type faultyStore struct {
	*store.Mem
	failCollection string
	failNameSearch bool
}

func (f *faultyStore) QueryByPatient(ctx context.Context, collection string, patientID int) ([]store.Document, error) {
	if collection == f.failCollection {
		return nil, errors.New("connection reset")
	}
	return f.Mem.QueryByPatient(ctx, collection, patientID)
}

func (f *faultyStore) SearchPatientsByName(ctx context.Context, fragment string) ([]store.Document, error) {
	if f.failNameSearch {
		return nil, errors.New("connection reset")
	}
	return f.Mem.SearchPatientsByName(ctx, fragment)
}

func TestProfileDegradesWhenSubCollectionFails(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	require.NoError(t, svc.AddMedication(ctx, 12345, "Metformin 500mg", "", ""))
	require.NoError(t, svc.AddAllergy(ctx, 12345, "Penicillin", SeveritySevere, ""))

	broken := NewService(&faultyStore{Mem: st, failCollection: store.Medications}, zerolog.Nop())
	profile, err := broken.Profile(ctx, 12345)
	require.NoError(t, err, "a failing sub-collection must not fail the whole profile")
	assert.Equal(t, "Brigid O'Sullivan", profile.PatientInfo.Name)
	assert.NotNil(t, profile.Medications)
	assert.Empty(t, profile.Medications, "failed sub-collection degrades to an empty list")
	require.Len(t, profile.Allergies, 1, "healthy sub-collections are unaffected")
}

func TestResolveByNameDegradesOnStoreFailure(t *testing.T) {
	_, st := newTestService(t)
	seedClinic(t, st)

	broken := NewService(&faultyStore{Mem: st, failNameSearch: true}, zerolog.Nop())
	_, err := broken.PatientByName(context.Background(), "Cian")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = broken.Resolve(context.Background(), "Cian")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAllergyOverwriteIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	require.NoError(t, svc.AddAllergy(ctx, 12345, "Pollen", SeverityMild, "sneezing"))
	require.NoError(t, svc.AddAllergy(ctx, 12345, "Pollen", SeveritySevere, "anaphylaxis"))

	profile, err := svc.Profile(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, profile.Allergies, 1, "re-adding the same allergen must overwrite, not duplicate")
	assert.Equal(t, SeveritySevere, profile.Allergies[0].Severity)
	assert.Equal(t, "anaphylaxis", profile.Allergies[0].Notes)
}

func TestConsultationsAppendOnly(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	// advance the clock one second per write so the derived keys differ
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	require.NoError(t, svc.AddConsultation(ctx, 12346, "Dr. Test", "first note"))
	require.NoError(t, svc.AddConsultation(ctx, 12346, "Dr. Test", "second note"))

	profile, err := svc.Profile(ctx, 12346)
	require.NoError(t, err)
	require.Len(t, profile.Consultations, 2)
	notes := []string{profile.Consultations[0].Notes, profile.Consultations[1].Notes}
	assert.Contains(t, notes, "first note")
	assert.Contains(t, notes, "second note")
}

func TestMedicationSameDayOverwrites(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.AddMedication(ctx, 12345, "Lisinopril 10mg", "", ""))
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.AddMedication(ctx, 12345, "Lisinopril 10mg", "", "paused"))

	profile, err := svc.Profile(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, profile.Medications, 1)
	assert.Equal(t, "paused", profile.Medications[0].Status)
}

func TestRecentPatientsNullsLast(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.AddConsultation(ctx, 12345, "Dr. Byrne", "older visit"))
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.AddConsultation(ctx, 12346, "Dr. Byrne", "newer visit"))
	// 12347 has no consultations

	recent, err := svc.RecentPatients(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 12346, recent[0].PatientID)
	assert.Equal(t, 12345, recent[1].PatientID)
	assert.Equal(t, 12347, recent[2].PatientID)
	assert.Nil(t, recent[2].LastSeen, "patient with no consultations must appear with null last_seen")
	require.NotNil(t, recent[0].LastSeen)
	assert.Equal(t, "2025-03-14", *recent[0].LastSeen)
}

func TestRecentPatientsHonorsLimit(t *testing.T) {
	svc, st := newTestService(t)
	seedClinic(t, st)

	recent, err := svc.RecentPatients(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
