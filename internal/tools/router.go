package tools

import (
	"context"
	"fmt"

	"medicai/internal/memory"
	"medicai/pkg"
)

// UpdatePatientMemory is the memory router: it classifies a free-form
// memory type into one of the typed write intents and dispatches the
// matching write.  Classification itself is pure (memory.Classify); this
// method only resolves the patient, derives the sub-fields, and translates
// write outcomes into Results.
func (t *Toolset) UpdatePatientMemory(ctx context.Context, identifier, memoryType, content, details string) pkg.Result {
	patientID, res := t.resolveExisting(ctx, identifier)
	if res != nil {
		return *res
	}

	kind := memory.Classify(memoryType)
	var err error
	switch kind {
	case memory.KindMedication:
		err = t.memory.AddMedication(ctx, patientID, content, "", "")
	case memory.KindAllergy:
		err = t.memory.AddAllergy(ctx, patientID, content, memory.DeriveSeverity(details), details)
	case memory.KindPreference:
		err = t.memory.AddPreference(ctx, patientID, memory.DeriveCategory(content), content, details)
	case memory.KindConsultation:
		doctor := details
		if doctor == "" {
			doctor = DefaultDoctor
		}
		err = t.memory.AddConsultation(ctx, patientID, doctor, content)
	default:
		return pkg.Error(fmt.Sprintf("Unrecognized memory type: %s", memoryType))
	}
	if err != nil {
		return pkg.Error(fmt.Sprintf("Failed to record %s for patient %d", kind, patientID))
	}
	return pkg.Success(fmt.Sprintf("Recorded %s for patient %d", kind, patientID), nil)
}
