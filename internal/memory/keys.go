package memory

import (
	"fmt"
	"strings"
	"time"
)

// Document keys are derived, not generated: the same inputs always produce
// the same key, which makes every write an idempotent upsert.  The formulas
// are deliberately asymmetric.  An allergy key has no date component because
// an allergy is a standing fact, while a medication key carries the
// prescription day because a medication can change per day.

const maxNamePart = 20

// sanitizeName normalizes free-text names (medications, allergens) for use
// inside a document key: lowercase, spaces and hyphens to underscores,
// truncated to 20 characters.
func sanitizeName(s string) string {
	clean := strings.ToLower(s)
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "-", "_")
	if len(clean) > maxNamePart {
		clean = clean[:maxNamePart]
	}
	return clean
}

// consultationKey: {patient_id}_{YYYYMMDD_HHMMSS}.  Collisions are possible
// only for the same patient within the same second.
func consultationKey(patientID int, t time.Time) string {
	return fmt.Sprintf("%d_%s", patientID, t.Format("20060102_150405"))
}

// medicationKey: {patient_id}_{sanitized_name:20}_{YYYYMMDD}.  Re-adding the
// same medication on the same day overwrites rather than duplicates.
func medicationKey(patientID int, medication string, t time.Time) string {
	return fmt.Sprintf("%d_%s_%s", patientID, sanitizeName(medication), t.Format("20060102"))
}

// allergyKey: {patient_id}_{sanitized_allergen:20}.  No time component.
func allergyKey(patientID int, allergen string) string {
	return fmt.Sprintf("%d_%s", patientID, sanitizeName(allergen))
}

// preferenceKey: {patient_id}_{category}_{YYYYMMDD_HHMMSS}.
func preferenceKey(patientID int, category string, t time.Time) string {
	return fmt.Sprintf("%d_%s_%s", patientID, category, t.Format("20060102_150405"))
}
