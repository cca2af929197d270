package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"medicai/pkg"
)

// Postgres implements Store on a single documents table keyed by
// (collection, key), with the record body held as JSONB.  The caller owns
// the *sql.DB lifecycle up to construction; Close closes it.
type Postgres struct {
	db *sql.DB
	// notifyChannel, when non-empty, receives a NOTIFY after every upsert
	// so listeners (e.g. a dashboard) can refresh.  Payload is
	// "collection:key".
	notifyChannel string
	log           zerolog.Logger
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps an open database handle.  notifyChannel may be empty to
// disable change notifications.
func NewPostgres(db *sql.DB, notifyChannel string, log zerolog.Logger) *Postgres {
	return &Postgres{db: db, notifyChannel: notifyChannel, log: log}
}

// Get fetches one document by key.
func (p *Postgres) Get(ctx context.Context, collection, key string) (Document, error) {
	var doc []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return Document(doc), nil
}

// Upsert creates or replaces the document under key.  Last write wins.
func (p *Postgres) Upsert(ctx context.Context, collection, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, doc)
         VALUES ($1, $2, $3)
         ON CONFLICT (collection, key) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, key, body,
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, key, err)
	}
	p.notify(ctx, collection, key)
	return nil
}

// notify emits a change notification on the configured channel.  Failures
// are logged and swallowed: notification is best effort and must never fail
// a write that already committed.
func (p *Postgres) notify(ctx context.Context, collection, key string) {
	if p.notifyChannel == "" {
		return
	}
	channel := pq.QuoteIdentifier(p.notifyChannel)
	payload := pq.QuoteLiteral(collection + ":" + key)
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf("NOTIFY %s, %s", channel, payload)); err != nil {
		p.log.Warn().Err(err).Str("collection", collection).Str("key", key).
			Msg("change notification failed")
	}
}

// QueryByPatient returns all documents in the collection for one patient.
func (p *Postgres) QueryByPatient(ctx context.Context, collection string, patientID int) ([]Document, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM documents
         WHERE collection = $1 AND (doc->>'patient_id')::bigint = $2`,
		collection, patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s for patient %d: %w", collection, patientID, err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// SearchPatientsByName performs a case-insensitive substring match over
// patient names.  No ORDER BY: the first-match semantics upstream are
// intentionally unspecified.
func (p *Postgres) SearchPatientsByName(ctx context.Context, fragment string) ([]Document, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM documents
         WHERE collection = $1
           AND lower(doc->>'name') LIKE '%' || lower($2) || '%'`,
		Patients, fragment,
	)
	if err != nil {
		return nil, fmt.Errorf("search patients by name %q: %w", fragment, err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// RecentPatients runs the grouped max-aggregation behind the ranking:
// patients left-joined with consultations, most recent consultation date
// per patient, descending with NULLS LAST.
func (p *Postgres) RecentPatients(ctx context.Context, limit int) ([]pkg.RecentPatient, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT (p.doc->>'patient_id')::bigint AS patient_id,
                p.doc->>'name'                 AS name,
                MAX(c.doc->>'date')            AS last_seen
         FROM documents p
         LEFT JOIN documents c
           ON c.collection = $2
          AND c.doc->>'patient_id' = p.doc->>'patient_id'
         WHERE p.collection = $1
         GROUP BY 1, 2
         ORDER BY last_seen DESC NULLS LAST
         LIMIT $3`,
		Patients, Consultations, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent patients: %w", err)
	}
	defer rows.Close()
	var out []pkg.RecentPatient
	for rows.Next() {
		var rp pkg.RecentPatient
		var lastSeen sql.NullString
		if err := rows.Scan(&rp.PatientID, &rp.Name, &lastSeen); err != nil {
			return nil, err
		}
		if lastSeen.Valid {
			rp.LastSeen = &lastSeen.String
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (p *Postgres) Close() error { return p.db.Close() }

func collectDocs(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, Document(doc))
	}
	return docs, rows.Err()
}
