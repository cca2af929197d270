package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"medicai/pkg"
)

// Mem is an in-memory Store.  It backs tests and credential-free local runs;
// semantics match the Postgres implementation (last-write-wins upserts, no
// cross-collection atomicity).
type Mem struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ Store = (*Mem)(nil)

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{collections: make(map[string]map[string][]byte)}
}

// Get fetches one document by key.
func (m *Mem) Get(_ context.Context, collection, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return Document(doc), nil
}

// Upsert creates or replaces the document under key.
func (m *Mem) Upsert(_ context.Context, collection, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]byte)
	}
	m.collections[collection][key] = body
	return nil
}

// QueryByPatient returns all documents in the collection for one patient.
func (m *Mem) QueryByPatient(_ context.Context, collection string, patientID int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []Document
	for _, key := range m.sortedKeys(collection) {
		doc := m.collections[collection][key]
		var probe struct {
			PatientID int `json:"patient_id"`
		}
		if err := json.Unmarshal(doc, &probe); err != nil {
			continue
		}
		if probe.PatientID == patientID {
			docs = append(docs, Document(doc))
		}
	}
	return docs, nil
}

// SearchPatientsByName performs a case-insensitive substring match over
// patient names.
func (m *Mem) SearchPatientsByName(_ context.Context, fragment string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(fragment)
	var docs []Document
	for _, key := range m.sortedKeys(Patients) {
		doc := m.collections[Patients][key]
		var probe struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(doc, &probe); err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(probe.Name), needle) {
			docs = append(docs, Document(doc))
		}
	}
	return docs, nil
}

// RecentPatients ranks patients by most recent consultation date,
// descending, patients with no consultations last.
func (m *Mem) RecentPatients(_ context.Context, limit int) ([]pkg.RecentPatient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lastSeen := make(map[int]string)
	for _, key := range m.sortedKeys(Consultations) {
		var c struct {
			PatientID int    `json:"patient_id"`
			Date      string `json:"date"`
		}
		if err := json.Unmarshal(m.collections[Consultations][key], &c); err != nil {
			continue
		}
		if c.Date > lastSeen[c.PatientID] {
			lastSeen[c.PatientID] = c.Date
		}
	}

	var out []pkg.RecentPatient
	for _, key := range m.sortedKeys(Patients) {
		var p struct {
			PatientID int    `json:"patient_id"`
			Name      string `json:"name"`
		}
		if err := json.Unmarshal(m.collections[Patients][key], &p); err != nil {
			continue
		}
		rp := pkg.RecentPatient{PatientID: p.PatientID, Name: p.Name}
		if seen, ok := lastSeen[p.PatientID]; ok {
			rp.LastSeen = &seen
		}
		out = append(out, rp)
	}

	// ISO date strings compare lexicographically; nil sorts after any date.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastSeen, out[j].LastSeen
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Mem) Close() error { return nil }

// sortedKeys returns the collection's keys in a stable order so queries are
// reproducible under test.  Callers must hold the read lock.
func (m *Mem) sortedKeys(collection string) []string {
	keys := make([]string, 0, len(m.collections[collection]))
	for k := range m.collections[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
