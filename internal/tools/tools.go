// Package tools implements the four operations exposed to both the REST
// layer and the conversational agent.  Every operation returns a uniform
// Result: success with payload, or error with a human-readable message.
// Infrastructure failures never escape as panics or raw errors.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"medicai/internal/memory"
	"medicai/pkg"
)

// DefaultRecentLimit bounds the recent-patients listing.
const DefaultRecentLimit = 10

// DefaultDoctor is used when a consultation dispatch arrives without a
// doctor name.
const DefaultDoctor = "Dr. Unknown"

// Toolset binds the tool operations to a memory service.
type Toolset struct {
	memory *memory.Service
	limit  int
	log    zerolog.Logger
}

// NewToolset constructs a Toolset.  recentLimit <= 0 falls back to
// DefaultRecentLimit.
func NewToolset(mem *memory.Service, recentLimit int, log zerolog.Logger) *Toolset {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Toolset{
		memory: mem,
		limit:  recentLimit,
		log:    log.With().Str("component", "tools").Logger(),
	}
}

// GetPatientBrief resolves the identifier and assembles the full profile.
// The error message for an unknown patient always contains the literal
// identifier the caller supplied.
func (t *Toolset) GetPatientBrief(ctx context.Context, identifier string) pkg.Result {
	patientID, err := t.memory.Resolve(ctx, identifier)
	if err != nil {
		return notFound(identifier)
	}
	profile, err := t.memory.Profile(ctx, patientID)
	if errors.Is(err, memory.ErrPatientNotFound) {
		return notFound(identifier)
	}
	if err != nil {
		t.log.Error().Err(err).Str("identifier", identifier).Msg("patient brief failed")
		return pkg.Error(fmt.Sprintf("Error retrieving patient brief for %s", identifier))
	}
	return pkg.Success("", profile)
}

// AddConsultationNotes records consultation notes for a patient.  Unlike
// the resolver's numeric fast path, a numeric identifier is verified to
// exist before writing, so notes are never attached to a phantom patient.
func (t *Toolset) AddConsultationNotes(ctx context.Context, identifier, doctor, notes string) pkg.Result {
	patientID, res := t.resolveExisting(ctx, identifier)
	if res != nil {
		return *res
	}
	if err := t.memory.AddConsultation(ctx, patientID, doctor, notes); err != nil {
		return pkg.Error("Failed to add consultation notes")
	}
	return pkg.Success(fmt.Sprintf("Consultation notes added for patient %d", patientID), nil)
}

// ListRecentPatients returns patients ordered by most recent consultation.
func (t *Toolset) ListRecentPatients(ctx context.Context) pkg.Result {
	patients, err := t.memory.RecentPatients(ctx, t.limit)
	if err != nil {
		return pkg.Error("Error listing recent patients")
	}
	return pkg.Success("", patients)
}

// resolveExisting resolves an identifier and confirms the patient record
// exists.  Returns the ID, or a ready-made error Result.
func (t *Toolset) resolveExisting(ctx context.Context, identifier string) (int, *pkg.Result) {
	patientID, err := t.memory.Resolve(ctx, identifier)
	if err != nil {
		r := notFound(identifier)
		return 0, &r
	}
	if _, err := t.memory.Profile(ctx, patientID); err != nil {
		r := notFound(identifier)
		return 0, &r
	}
	return patientID, nil
}

func notFound(identifier string) pkg.Result {
	return pkg.Error(fmt.Sprintf("Patient not found: %s", identifier))
}
