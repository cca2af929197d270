package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"medicai/internal/store"
	"medicai/pkg"
)

// ErrPatientNotFound is the sentinel for an identifier that resolves to no
// patient.  Callers translate it into a user-visible message containing the
// identifier they queried.
var ErrPatientNotFound = errors.New("patient not found")

// Service is the patient memory system: identifier resolution, profile
// assembly, the typed write operations, and the recent-patients ranking.
// It holds an injected store handle; nothing here is global state.
type Service struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewService constructs the memory service on top of a store.
func NewService(st store.Store, log zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   log.With().Str("component", "memory").Logger(),
		now:   time.Now,
	}
}

// Resolve maps a caller-supplied identifier to a patient ID.  A numeric
// identifier is taken as the candidate ID directly with no existence check;
// existence surfaces at the caller's next read.  Anything else is matched
// case-insensitively as a name substring, first match wins (the tie-break
// between multiple matches is intentionally unspecified).
func (s *Service) Resolve(ctx context.Context, identifier string) (int, error) {
	if id, err := strconv.Atoi(identifier); err == nil {
		return id, nil
	}
	patient, err := s.PatientByName(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return patient.PatientID, nil
}

// PatientByName finds a patient whose name contains the fragment.  Store
// failures degrade to not-found: the resolver must be total.
func (s *Service) PatientByName(ctx context.Context, fragment string) (*pkg.Patient, error) {
	docs, err := s.store.SearchPatientsByName(ctx, fragment)
	if err != nil {
		s.log.Error().Err(err).Str("name", fragment).Msg("patient name search failed")
		return nil, ErrPatientNotFound
	}
	for _, doc := range docs {
		var p pkg.Patient
		if err := json.Unmarshal(doc, &p); err != nil {
			s.log.Warn().Err(err).Msg("skipping undecodable patient document")
			continue
		}
		return &p, nil
	}
	return nil, ErrPatientNotFound
}

// Profile assembles the complete view of one patient.  The base record is
// the canonical existence check; each sub-collection fetch degrades to an
// empty list on failure, so the profile is best-effort complete.
func (s *Service) Profile(ctx context.Context, patientID int) (*pkg.Profile, error) {
	doc, err := s.store.Get(ctx, store.Patients, strconv.Itoa(patientID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch patient %d: %w", patientID, err)
	}
	profile := &pkg.Profile{
		Consultations: []pkg.Consultation{},
		Medications:   []pkg.Medication{},
		Allergies:     []pkg.Allergy{},
		Preferences:   []pkg.Preference{},
	}
	if err := json.Unmarshal(doc, &profile.PatientInfo); err != nil {
		return nil, fmt.Errorf("decode patient %d: %w", patientID, err)
	}
	decodeInto(s, ctx, store.Consultations, patientID, &profile.Consultations)
	decodeInto(s, ctx, store.Medications, patientID, &profile.Medications)
	decodeInto(s, ctx, store.Allergies, patientID, &profile.Allergies)
	decodeInto(s, ctx, store.Preferences, patientID, &profile.Preferences)
	s.log.Debug().Int("patient_id", patientID).Msg("assembled patient profile")
	return profile, nil
}

// decodeInto appends every decodable document of a patient's sub-collection
// to dst.  Errors are logged, never propagated.
func decodeInto[T any](s *Service, ctx context.Context, collection string, patientID int, dst *[]T) {
	docs, err := s.store.QueryByPatient(ctx, collection, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("collection", collection).Int("patient_id", patientID).
			Msg("sub-collection fetch failed, continuing with empty list")
		return
	}
	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			s.log.Warn().Err(err).Str("collection", collection).Msg("skipping undecodable document")
			continue
		}
		*dst = append(*dst, rec)
	}
}

// AddConsultation appends a consultation note.  The derived key carries a
// second-granular timestamp, so consecutive notes never collide.
func (s *Service) AddConsultation(ctx context.Context, patientID int, doctor, notes string) error {
	now := s.now()
	key := consultationKey(patientID, now)
	rec := pkg.Consultation{
		ConsultationID: key,
		PatientID:      patientID,
		Date:           now.Format("2006-01-02"),
		Doctor:         doctor,
		Notes:          notes,
		CreatedAt:      now.Format(time.RFC3339),
	}
	if err := s.store.Upsert(ctx, store.Consultations, key, rec); err != nil {
		s.log.Error().Err(err).Int("patient_id", patientID).Msg("add consultation failed")
		return err
	}
	s.log.Info().Int("patient_id", patientID).Str("doctor", doctor).Msg("consultation note added")
	return nil
}

// AddMedication records a medication.  Re-adding the same medication name on
// the same day overwrites the earlier record.  prescribedDate defaults to
// today and status to "active".
func (s *Service) AddMedication(ctx context.Context, patientID int, medication, prescribedDate, status string) error {
	now := s.now()
	if prescribedDate == "" {
		prescribedDate = now.Format("2006-01-02")
	}
	if status == "" {
		status = "active"
	}
	key := medicationKey(patientID, medication, now)
	rec := pkg.Medication{
		MedicationID:   key,
		PatientID:      patientID,
		Medication:     medication,
		PrescribedDate: prescribedDate,
		Status:         status,
		CreatedAt:      now.Format(time.RFC3339),
	}
	if err := s.store.Upsert(ctx, store.Medications, key, rec); err != nil {
		s.log.Error().Err(err).Int("patient_id", patientID).Str("medication", medication).
			Msg("add medication failed")
		return err
	}
	s.log.Info().Int("patient_id", patientID).Str("medication", medication).Msg("medication added")
	return nil
}

// AddAllergy records an allergy as a standing fact: the key has no date
// component, so re-adding the same allergen always overwrites.
func (s *Service) AddAllergy(ctx context.Context, patientID int, allergen, severity, notes string) error {
	if severity == "" {
		severity = SeverityModerate
	}
	key := allergyKey(patientID, allergen)
	rec := pkg.Allergy{
		AllergyID: key,
		PatientID: patientID,
		Allergen:  allergen,
		Severity:  severity,
		Notes:     notes,
		CreatedAt: s.now().Format(time.RFC3339),
	}
	if err := s.store.Upsert(ctx, store.Allergies, key, rec); err != nil {
		s.log.Error().Err(err).Int("patient_id", patientID).Str("allergen", allergen).
			Msg("add allergy failed")
		return err
	}
	s.log.Info().Int("patient_id", patientID).Str("allergen", allergen).Str("severity", severity).
		Msg("allergy added")
	return nil
}

// AddPreference records a patient preference.  Append-only like
// consultations; category defaults to general.
func (s *Service) AddPreference(ctx context.Context, patientID int, category, preference, notes string) error {
	if category == "" {
		category = CategoryGeneral
	}
	now := s.now()
	key := preferenceKey(patientID, category, now)
	rec := pkg.Preference{
		PreferenceID: key,
		PatientID:    patientID,
		Category:     category,
		Preference:   preference,
		Notes:        notes,
		CreatedAt:    now.Format(time.RFC3339),
	}
	if err := s.store.Upsert(ctx, store.Preferences, key, rec); err != nil {
		s.log.Error().Err(err).Int("patient_id", patientID).Msg("add preference failed")
		return err
	}
	s.log.Info().Int("patient_id", patientID).Str("category", category).Msg("preference added")
	return nil
}

// RecentPatients returns patients ordered by most recent consultation,
// patients without consultations last.  Store failures propagate to the
// caller; a nil result from the store is normalized to an empty slice.
func (s *Service) RecentPatients(ctx context.Context, limit int) ([]pkg.RecentPatient, error) {
	patients, err := s.store.RecentPatients(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("recent patients query failed")
		return nil, err
	}
	if patients == nil {
		patients = []pkg.RecentPatient{}
	}
	return patients, nil
}
