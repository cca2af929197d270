package tools

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicai/internal/memory"
	"medicai/internal/store"
	"medicai/pkg"
)

func newTestToolset(t *testing.T) (*Toolset, *memory.Service, *store.Mem) {
	t.Helper()
	st := store.NewMem()
	mem := memory.NewService(st, zerolog.Nop())
	ts := NewToolset(mem, 0, zerolog.Nop())

	for id, name := range map[int]string{
		12345: "Brigid O'Sullivan",
		12346: "Cian Murphy",
		12347: "Orla Flanagan",
	} {
		p := pkg.Patient{PatientID: id, Name: name}
		require.NoError(t, st.Upsert(context.Background(), store.Patients, strconv.Itoa(id), p))
	}
	return ts, mem, st
}

func TestGetPatientBriefByID(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	res := ts.GetPatientBrief(context.Background(), "12345")
	require.Equal(t, pkg.StatusSuccess, res.Status)
	profile, ok := res.Data.(*pkg.Profile)
	require.True(t, ok)
	assert.Equal(t, "Brigid O'Sullivan", profile.PatientInfo.Name)
}

func TestGetPatientBriefByName(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	res := ts.GetPatientBrief(context.Background(), "Orla Flanagan")
	require.Equal(t, pkg.StatusSuccess, res.Status)
	profile := res.Data.(*pkg.Profile)
	assert.Equal(t, 12347, profile.PatientInfo.PatientID)
}

func TestGetPatientBriefNotFound(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	res := ts.GetPatientBrief(context.Background(), "99999")
	assert.Equal(t, pkg.StatusError, res.Status)
	assert.Contains(t, res.Message, "not found")
	assert.Contains(t, res.Message, "99999", "error must name the literal identifier queried")
}

func TestAddConsultationNotesByName(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()

	res := ts.AddConsultationNotes(ctx, "Cian Murphy", "Dr. Test", "note")
	require.Equal(t, pkg.StatusSuccess, res.Status)
	assert.Contains(t, res.Message, "12346", "success must reference the resolved patient ID")

	profile, err := mem.Profile(ctx, 12346)
	require.NoError(t, err)
	require.Len(t, profile.Consultations, 1)
	assert.Equal(t, "note", profile.Consultations[0].Notes)
	assert.Equal(t, "Dr. Test", profile.Consultations[0].Doctor)
}

func TestAddConsultationNotesUnknownPatient(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	res := ts.AddConsultationNotes(context.Background(), "99999", "Dr. Test", "should fail")
	assert.Equal(t, pkg.StatusError, res.Status)
	assert.Contains(t, res.Message, "99999")
}

func TestListRecentPatients(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()
	require.NoError(t, mem.AddConsultation(ctx, 12345, "Dr. Byrne", "visit"))

	res := ts.ListRecentPatients(ctx)
	require.Equal(t, pkg.StatusSuccess, res.Status)
	patients := res.Data.([]pkg.RecentPatient)
	require.Len(t, patients, 3)
	assert.Equal(t, 12345, patients[0].PatientID)
	assert.Nil(t, patients[2].LastSeen)
}

func TestUpdateMemoryAllergySeverity(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()

	res := ts.UpdatePatientMemory(ctx, "12345", "allergy", "Shellfish", "severe reaction")
	require.Equal(t, pkg.StatusSuccess, res.Status)
	assert.Contains(t, res.Message, "allergy")
	assert.Contains(t, res.Message, "12345")

	profile, err := mem.Profile(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, profile.Allergies, 1)
	assert.Equal(t, "Shellfish", profile.Allergies[0].Allergen)
	assert.Equal(t, memory.SeveritySevere, profile.Allergies[0].Severity)
}

func TestUpdateMemoryPreferenceDefaultsToGeneral(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()

	res := ts.UpdatePatientMemory(ctx, "12345", "preference", "Prefers video consultations", "")
	require.Equal(t, pkg.StatusSuccess, res.Status)

	profile, err := mem.Profile(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, profile.Preferences, 1)
	assert.Equal(t, memory.CategoryGeneral, profile.Preferences[0].Category)
}

func TestUpdateMemoryMedication(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()

	res := ts.UpdatePatientMemory(ctx, "Brigid", "started on medication", "Metformin 500mg", "")
	require.Equal(t, pkg.StatusSuccess, res.Status)

	profile, err := mem.Profile(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, profile.Medications, 1)
	assert.Equal(t, "Metformin 500mg", profile.Medications[0].Medication)
	assert.Equal(t, "active", profile.Medications[0].Status)
}

func TestUpdateMemoryConsultationDefaultDoctor(t *testing.T) {
	ts, mem, _ := newTestToolset(t)
	ctx := context.Background()

	res := ts.UpdatePatientMemory(ctx, "12346", "visit notes", "Complained of headaches", "")
	require.Equal(t, pkg.StatusSuccess, res.Status)

	profile, err := mem.Profile(ctx, 12346)
	require.NoError(t, err)
	require.Len(t, profile.Consultations, 1)
	assert.Equal(t, DefaultDoctor, profile.Consultations[0].Doctor)
}

func TestUpdateMemoryUnrecognizedType(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	res := ts.UpdatePatientMemory(context.Background(), "12345", "horoscope", "Aries", "")
	assert.Equal(t, pkg.StatusError, res.Status)
	assert.Contains(t, res.Message, "horoscope")
}

func TestEndToEndScenario(t *testing.T) {
	ts, _, _ := newTestToolset(t)
	ctx := context.Background()

	// resolve by first name fragment
	res := ts.AddConsultationNotes(ctx, "Cian Murphy", "Dr. Test", "note")
	require.Equal(t, pkg.StatusSuccess, res.Status)
	assert.Contains(t, res.Message, "12346")

	// the note is retrievable through the brief, verbatim
	brief := ts.GetPatientBrief(ctx, "12346")
	require.Equal(t, pkg.StatusSuccess, brief.Status)
	profile := brief.Data.(*pkg.Profile)
	require.Len(t, profile.Consultations, 1)
	assert.Equal(t, "note", profile.Consultations[0].Notes)
}
