package store

import (
	"context"
	"encoding/json"
	"errors"

	"medicai/pkg"
)

// Collection names.  They mirror the five record kinds of the data model.
const (
	Patients      = "patients"
	Consultations = "consultations"
	Medications   = "medications"
	Allergies     = "allergies"
	Preferences   = "preferences"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// Document is a raw stored record.  The memory layer decodes documents into
// the typed records in pkg.
type Document = json.RawMessage

// Store is the keyed document store the memory system is built on.  It is
// deliberately narrow: point get, create-or-replace upsert, two predicate
// queries, and the one aggregation the recent-patients ranking needs.
//
// Implementations must treat Upsert as last-write-wins on (collection, key);
// no cross-collection atomicity is expected or provided.
type Store interface {
	// Get fetches one document by key, or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Document, error)

	// Upsert creates or replaces the document under key.
	Upsert(ctx context.Context, collection, key string, doc any) error

	// QueryByPatient returns every document in the collection whose
	// patient_id field equals patientID, in no defined order.
	QueryByPatient(ctx context.Context, collection string, patientID int) ([]Document, error)

	// SearchPatientsByName returns patient documents whose name contains
	// the fragment, case-insensitively.  Result order is undefined; callers
	// that take the first match inherit that ambiguity.
	SearchPatientsByName(ctx context.Context, fragment string) ([]Document, error)

	// RecentPatients returns patients ordered by their most recent
	// consultation date descending, patients without consultations last,
	// truncated to limit.
	RecentPatients(ctx context.Context, limit int) ([]pkg.RecentPatient, error)

	// Close releases the underlying resources.
	Close() error
}
