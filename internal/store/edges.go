// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/docgraph/pkg/types"
)

// ObservationsByDocument returns, per document, the canonical entities
// observed there, filtered by label when one is given. Entities within
// each document come back in lexical order.
func (s *Store) ObservationsByDocument(ctx context.Context, label types.EntityLabel) (map[int64][]string, error) {
	var sb strings.Builder
	args := []any{}

	sb.WriteString(`SELECT document_id, entity FROM entity_observations`)
	if label != "" {
		sb.WriteString(` WHERE label = ?`)
		args = append(args, string(label))
	}
	sb.WriteString(` ORDER BY document_id, entity`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var docID int64
		var entity string
		if err := rows.Scan(&docID, &entity); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		out[docID] = append(out[docID], entity)
	}
	return out, rows.Err()
}

// ReplaceEdges truncates the edge table and writes a fresh set in one
// transaction. Pairs must already be ordered entity_a < entity_b.
func (s *Store) ReplaceEdges(ctx context.Context, edges []types.Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cooccurrence_edges`); err != nil {
		return fmt.Errorf("truncating edges: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cooccurrence_edges (entity_a, entity_b, doc_count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.EntityA, e.EntityB, e.DocCount); err != nil {
			return fmt.Errorf("inserting edge %s|%s: %w", e.EntityA, e.EntityB, err)
		}
	}
	return tx.Commit()
}

// EdgesAbove returns all edges with at least the given shared-document
// count, ordered by weight descending.
func (s *Store) EdgesAbove(ctx context.Context, floor int) ([]types.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_a, entity_b, doc_count
		FROM cooccurrence_edges
		WHERE doc_count >= ?
		ORDER BY doc_count DESC, entity_a, entity_b`, floor)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var out []types.Edge
	for rows.Next() {
		var e types.Edge
		if err := rows.Scan(&e.EntityA, &e.EntityB, &e.DocCount); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
