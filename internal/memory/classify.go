package memory

import "strings"

// Kind is the closed set of write intents a free-form memory type can
// resolve to.  Classification is pure string matching: it must stay
// deterministic and independently testable, because the conversational
// agent phrases memory types inconsistently.
type Kind int

const (
	KindUnknown Kind = iota
	KindMedication
	KindAllergy
	KindPreference
	KindConsultation
)

// String names the kind for log lines and user-facing messages.
func (k Kind) String() string {
	switch k {
	case KindMedication:
		return "medication"
	case KindAllergy:
		return "allergy"
	case KindPreference:
		return "preference"
	case KindConsultation:
		return "consultation"
	default:
		return "unknown"
	}
}

// Severity values for allergies.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Preference categories.
const (
	CategoryGeneral       = "general"
	CategoryScheduling    = "scheduling"
	CategoryCommunication = "communication"
	CategoryTreatment     = "treatment"
)

// Classify maps a free-form memory type onto a Kind.  Matching is
// case-insensitive substring membership, first match wins, in fixed
// priority order: medication, allergy, preference, consultation.
func Classify(memoryType string) Kind {
	t := strings.ToLower(memoryType)
	switch {
	case containsAny(t, "medic", "drug", "prescription"):
		return KindMedication
	case containsAny(t, "allerg", "reaction"):
		return KindAllergy
	case containsAny(t, "prefer", "like", "want"):
		return KindPreference
	case containsAny(t, "consult", "note", "visit"):
		return KindConsultation
	default:
		return KindUnknown
	}
}

// DeriveSeverity inspects the free-text details of an allergy update and
// returns a severity, defaulting to moderate.
func DeriveSeverity(details string) string {
	d := strings.ToLower(details)
	switch {
	case containsAny(d, "severe", "serious"):
		return SeveritySevere
	case containsAny(d, "mild", "minor"):
		return SeverityMild
	default:
		return SeverityModerate
	}
}

// DeriveCategory inspects the content of a preference update and returns a
// category, defaulting to general.
func DeriveCategory(content string) string {
	c := strings.ToLower(content)
	switch {
	case containsAny(c, "appointment", "scheduling"):
		return CategoryScheduling
	case containsAny(c, "communicat", "contact"):
		return CategoryCommunication
	case containsAny(c, "treatment", "care"):
		return CategoryTreatment
	default:
		return CategoryGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
