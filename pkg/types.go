package pkg

// Patient is the base demographic record.  Patients are seeded externally;
// this service reads them and attaches sub-records, but never creates or
// deletes the base record itself.
type Patient struct {
	PatientID      int      `json:"patient_id"`
	Name           string   `json:"name"`
	DateOfBirth    string   `json:"date_of_birth,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	LastUpdated    string   `json:"last_updated,omitempty"`
	MedicalHistory []string `json:"medical_history,omitempty"`
}

// Consultation is one consultation event.  The ID carries a second-granular
// timestamp, so consultations are effectively append-only.
type Consultation struct {
	ConsultationID string `json:"consultation_id"`
	PatientID      int    `json:"patient_id"`
	Date           string `json:"date"`
	Doctor         string `json:"doctor"`
	Notes          string `json:"notes"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// Medication is a prescribed medication.  The ID includes the prescription
// day, so re-adding the same medication on the same day overwrites.
type Medication struct {
	MedicationID   string `json:"medication_id"`
	PatientID      int    `json:"patient_id"`
	Medication     string `json:"medication"`
	PrescribedDate string `json:"prescribed_date"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// Allergy is a standing fact about a patient.  Its ID has no date component:
// re-recording the same allergen always overwrites the previous record.
type Allergy struct {
	AllergyID string `json:"allergy_id"`
	PatientID int    `json:"patient_id"`
	Allergen  string `json:"allergen"`
	Severity  string `json:"severity"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Preference records how a patient likes to be treated, scheduled or
// contacted.  Append-only like consultations.
type Preference struct {
	PreferenceID string `json:"preference_id"`
	PatientID    int    `json:"patient_id"`
	Category     string `json:"category"`
	Preference   string `json:"preference"`
	Notes        string `json:"notes"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Profile aggregates a patient with everything known about them.  It is a
// read-only view; missing sub-collections degrade to empty slices.
type Profile struct {
	PatientInfo   Patient        `json:"patient_info"`
	Consultations []Consultation `json:"consultations"`
	Medications   []Medication   `json:"medications"`
	Allergies     []Allergy      `json:"allergies"`
	Preferences   []Preference   `json:"preferences"`
}

// RecentPatient is one row of the recent-patients ranking.  LastSeen is nil
// for patients with no consultations on file; such patients sort last.
type RecentPatient struct {
	PatientID int     `json:"patient_id"`
	Name      string  `json:"name"`
	LastSeen  *string `json:"last_seen"`
}

// Result statuses.  Every tool result is exactly one of the two; there is no
// partial-success shape.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the uniform envelope returned by the tool operations to both the
// HTTP layer and the conversational agent.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success builds a success Result with an optional payload.
func Success(message string, data any) Result {
	return Result{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error Result with a human-readable message.
func Error(message string) Result {
	return Result{Status: StatusError, Message: message}
}
