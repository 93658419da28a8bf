// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdiddy/docgraph/pkg/types"
)

// CatalogFile registers a corpus file, idempotent on rel_path. It
// reports whether a new document row was created.
func (s *Store) CatalogFile(ctx context.Context, relPath, sourceTag string, size int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (rel_path, source_tag, size) VALUES (?, ?, ?)`,
		relPath, sourceTag, size,
	)
	if err != nil {
		return false, fmt.Errorf("cataloging %s: %w", relPath, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Document looks up a document by rel_path.
func (s *Store) Document(ctx context.Context, relPath string) (*types.Document, error) {
	var d types.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, rel_path, source_tag, size, extraction_status FROM documents WHERE rel_path = ?`,
		relPath,
	).Scan(&d.ID, &d.RelPath, &d.SourceTag, &d.Size, &d.ExtractionStatus)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up document %s: %w", relPath, err)
	}
	return &d, nil
}

// SetExtractionStatus updates a document's extraction outcome.
func (s *Store) SetExtractionStatus(ctx context.Context, docID int64, status types.ExtractionStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE documents SET extraction_status = ? WHERE id = ?`, string(status), docID)
	if err != nil {
		return fmt.Errorf("updating extraction status: %w", err)
	}
	return nil
}

// HasObservations reports whether entity extraction already ran for a
// document, backing idempotent re-ingestion.
func (s *Store) HasObservations(ctx context.Context, docID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM entity_observations WHERE document_id = ?`, docID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking observations: %w", err)
	}
	return n > 0, nil
}

// PendingDocument is a document awaiting ingestion. CachedText is
// non-empty when earlier extraction already cached the text, so the
// worker can skip re-extraction.
type PendingDocument struct {
	ID         int64
	RelPath    string
	Status     types.ExtractionStatus
	CachedText string
}

// DocumentsNeedingIngest lists documents that are pending extraction or
// have cached text but no observations yet.
func (s *Store) DocumentsNeedingIngest(ctx context.Context) ([]PendingDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.rel_path, d.extraction_status, COALESCE(tc.extracted_text, '')
		FROM documents d
		LEFT JOIN text_cache tc ON tc.document_id = d.id
		WHERE d.extraction_status = 'pending'
		   OR (d.extraction_status = 'text' AND NOT EXISTS (
				SELECT 1 FROM entity_observations eo WHERE eo.document_id = d.id))
		ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("listing pending documents: %w", err)
	}
	defer rows.Close()

	var docs []PendingDocument
	for rows.Next() {
		var d PendingDocument
		if err := rows.Scan(&d.ID, &d.RelPath, &d.Status, &d.CachedText); err != nil {
			return nil, fmt.Errorf("scanning pending document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DocumentUpdate carries one document's ingestion result into a batched
// commit: the new status, cached text (when extracted this run), and
// the normalized observations.
type DocumentUpdate struct {
	DocID        int64
	Status       types.ExtractionStatus
	Text         string
	Method       string
	Observations []types.Observation
}

// ApplyUpdates commits a batch of ingestion results in one transaction.
// Observations for each document are replaced wholesale.
func (s *Store) ApplyUpdates(ctx context.Context, updates []DocumentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET extraction_status = ? WHERE id = ?`,
			string(u.Status), u.DocID); err != nil {
			return fmt.Errorf("updating document %d: %w", u.DocID, err)
		}
		if u.Text != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO text_cache (document_id, extracted_text, char_count, method)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(document_id) DO UPDATE SET
					extracted_text=excluded.extracted_text,
					char_count=excluded.char_count,
					method=excluded.method`,
				u.DocID, u.Text, len(u.Text), u.Method); err != nil {
				return fmt.Errorf("caching text for document %d: %w", u.DocID, err)
			}
		}
		if len(u.Observations) > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM entity_observations WHERE document_id = ?`, u.DocID); err != nil {
				return fmt.Errorf("clearing observations for document %d: %w", u.DocID, err)
			}
			stmt, err := tx.PrepareContext(ctx,
				`INSERT INTO entity_observations (document_id, entity, label, count) VALUES (?, ?, ?, ?)`)
			if err != nil {
				return fmt.Errorf("preparing observation insert: %w", err)
			}
			for _, o := range u.Observations {
				if _, err := stmt.ExecContext(ctx, u.DocID, o.Entity, string(o.Label), o.Count); err != nil {
					stmt.Close()
					return fmt.Errorf("inserting observation %s: %w", o.Entity, err)
				}
			}
			stmt.Close()
		}
	}
	return tx.Commit()
}

// InsertObservations replaces a single document's observations in one
// transaction.
func (s *Store) InsertObservations(ctx context.Context, docID int64, obs []types.Observation) error {
	return s.ApplyUpdates(ctx, []DocumentUpdate{{
		DocID:        docID,
		Status:       types.ExtractionText,
		Observations: obs,
	}})
}

// CreateTextDocument inserts a document together with its text and
// observations in a single transaction, used for email threads and
// other pre-extracted sources. All rows land or none do, so a partial
// thread can never be mistaken for an ingested one on rerun.
// Idempotent on rel_path: an existing document is returned unchanged
// with created=false.
func (s *Store) CreateTextDocument(ctx context.Context, relPath, sourceTag, text, method string, obs []types.Observation) (docID int64, created bool, err error) {
	if existing, err := s.Document(ctx, relPath); err != nil {
		return 0, false, err
	} else if existing != nil {
		return existing.ID, false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (rel_path, source_tag, size, extraction_status) VALUES (?, ?, ?, 'text')`,
		relPath, sourceTag, len(text))
	if err != nil {
		return 0, false, fmt.Errorf("inserting document %s: %w", relPath, err)
	}
	docID, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO text_cache (document_id, extracted_text, char_count, method) VALUES (?, ?, ?, ?)`,
		docID, text, len(text), method); err != nil {
		return 0, false, fmt.Errorf("caching text for %s: %w", relPath, err)
	}
	for _, o := range obs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entity_observations (document_id, entity, label, count) VALUES (?, ?, ?, ?)`,
			docID, o.Entity, string(o.Label), o.Count); err != nil {
			return 0, false, fmt.Errorf("inserting observation %s: %w", o.Entity, err)
		}
	}
	return docID, true, tx.Commit()
}
