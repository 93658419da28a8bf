// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	snippetRadius   = 200
	snippetFallback = 400
)

// TopEntities returns entities ranked by distinct-document count, then
// total mentions, then name. An empty label means all labels.
func (s *Store) TopEntities(ctx context.Context, label types.EntityLabel, minDocs, limit int) ([]types.EntityStat, error) {
	var sb strings.Builder
	args := []any{}

	sb.WriteString(`SELECT eo.entity, `)
	if label != "" {
		sb.WriteString(`eo.label`)
	} else {
		// Entities seen under several labels get the most-mentioned
		// one, ties breaking lexicographically, so the result is
		// independent of ingestion order.
		sb.WriteString(`
			(SELECT l.label FROM entity_observations l
			 WHERE l.entity = eo.entity
			 GROUP BY l.label
			 ORDER BY sum(l.count) DESC, l.label ASC
			 LIMIT 1)`)
	}
	sb.WriteString(`,
			count(DISTINCT eo.document_id) AS docs,
			sum(eo.count) AS mentions
		FROM entity_observations eo`)
	if label != "" {
		sb.WriteString(` WHERE eo.label = ?`)
		args = append(args, string(label))
	}
	sb.WriteString(` GROUP BY eo.entity`)
	if minDocs > 1 {
		sb.WriteString(` HAVING docs >= ?`)
		args = append(args, minDocs)
	}
	sb.WriteString(` ORDER BY docs DESC, mentions DESC, entity ASC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying top entities: %w", err)
	}
	defer rows.Close()

	var stats []types.EntityStat
	for rows.Next() {
		var st types.EntityStat
		if err := rows.Scan(&st.Entity, &st.Label, &st.Documents, &st.Mentions); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// EntityStats returns per-entity aggregates for a fixed entity set,
// keyed by canonical name. Entities with no observations are absent.
func (s *Store) EntityStats(ctx context.Context, entities []string) (map[string]types.EntityStat, error) {
	out := make(map[string]types.EntityStat, len(entities))
	if len(entities) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?,", len(entities)-1) + "?"
	args := make([]any, len(entities))
	for i, e := range entities {
		args[i] = e
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT eo.entity,
			(SELECT l.label FROM entity_observations l
			 WHERE l.entity = eo.entity
			 GROUP BY l.label
			 ORDER BY sum(l.count) DESC, l.label ASC
			 LIMIT 1),
			count(DISTINCT eo.document_id), sum(eo.count)
		FROM entity_observations eo
		WHERE eo.entity IN (`+placeholders+`)
		GROUP BY eo.entity`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entity stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st types.EntityStat
		if err := rows.Scan(&st.Entity, &st.Label, &st.Documents, &st.Mentions); err != nil {
			return nil, fmt.Errorf("scanning entity stats: %w", err)
		}
		out[st.Entity] = st
	}
	return out, rows.Err()
}

// LabelFor returns an entity's label. Entities observed under more than
// one label get the most frequent one; ties break lexicographically.
func (s *Store) LabelFor(ctx context.Context, entity string) (types.EntityLabel, error) {
	var label types.EntityLabel
	err := s.db.QueryRowContext(ctx, `
		SELECT label FROM entity_observations
		WHERE entity = ?
		GROUP BY label
		ORDER BY sum(count) DESC, label ASC
		LIMIT 1`, entity).Scan(&label)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("unknown entity %q", entity)
	}
	if err != nil {
		return "", fmt.Errorf("querying entity label: %w", err)
	}
	return label, nil
}

// Neighbors returns entities co-occurring with the given one, ranked by
// shared-document count.
func (s *Store) Neighbors(ctx context.Context, entity string, limit int) ([]types.Neighbor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CASE WHEN entity_a = ? THEN entity_b ELSE entity_a END AS other, doc_count
		FROM cooccurrence_edges
		WHERE entity_a = ? OR entity_b = ?
		ORDER BY doc_count DESC, other ASC
		LIMIT ?`, entity, entity, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors: %w", err)
	}
	defer rows.Close()

	var out []types.Neighbor
	for rows.Next() {
		var n types.Neighbor
		if err := rows.Scan(&n.Entity, &n.DocCount); err != nil {
			return nil, fmt.Errorf("scanning neighbor: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DocumentsMentioning returns documents observing an entity, newest
// first, each with a context snippet from the cached text.
func (s *Store) DocumentsMentioning(ctx context.Context, entity string, limit int) ([]types.DocumentHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.rel_path, d.source_tag, COALESCE(tc.extracted_text, '')
		FROM entity_observations eo
		JOIN documents d ON d.id = eo.document_id
		LEFT JOIN text_cache tc ON tc.document_id = d.id
		WHERE eo.entity = ?
		ORDER BY eo.count DESC, d.id ASC
		LIMIT ?`, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return scanHits(rows, entity)
}

// DocumentsMentioningBoth returns documents observing both entities,
// with a snippet centered on the first entity.
func (s *Store) DocumentsMentioningBoth(ctx context.Context, a, b string, limit int) ([]types.DocumentHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.rel_path, d.source_tag, COALESCE(tc.extracted_text, '')
		FROM entity_observations ea
		JOIN entity_observations eb ON eb.document_id = ea.document_id AND eb.entity = ?
		JOIN documents d ON d.id = ea.document_id
		LEFT JOIN text_cache tc ON tc.document_id = d.id
		WHERE ea.entity = ?
		ORDER BY ea.count + eb.count DESC, d.id ASC
		LIMIT ?`, b, a, limit)
	if err != nil {
		return nil, fmt.Errorf("querying shared documents: %w", err)
	}
	defer rows.Close()

	return scanHits(rows, a)
}

func scanHits(rows *sql.Rows, entity string) ([]types.DocumentHit, error) {
	var out []types.DocumentHit
	for rows.Next() {
		var h types.DocumentHit
		var text string
		if err := rows.Scan(&h.DocumentID, &h.RelPath, &h.SourceTag, &text); err != nil {
			return nil, fmt.Errorf("scanning document hit: %w", err)
		}
		h.Snippet = Snippet(text, entity)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Snippet extracts a raw window around the first case-insensitive match
// of needle in text, or the leading text when there is no match. Only
// the ends are trimmed; interior whitespace is preserved.
func Snippet(text, needle string) string {
	if text == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(needle))
	var start, end int
	if idx < 0 {
		start, end = 0, min(len(text), snippetFallback)
	} else {
		start = max(0, idx-snippetRadius)
		end = min(len(text), idx+len(needle)+snippetRadius)
	}
	// Lowercasing can shift byte offsets under a few case folds; keep
	// the cut on rune boundaries of the original text.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

// Status aggregates per-stage row counts.
func (s *Store) Status(ctx context.Context) (types.StoreStatus, error) {
	var st types.StoreStatus

	scalars := []struct {
		query string
		dst   *int
	}{
		{`SELECT count(*) FROM documents`, &st.Documents},
		{`SELECT count(*) FROM documents WHERE extraction_status = 'text'`, &st.WithText},
		{`SELECT count(*) FROM documents WHERE extraction_status = 'needs_ocr'`, &st.NeedsOCR},
		{`SELECT count(*) FROM documents WHERE extraction_status = 'failed'`, &st.Failed},
		{`SELECT count(*) FROM entity_observations`, &st.Observations},
		{`SELECT count(DISTINCT entity) FROM entity_observations`, &st.Entities},
		{`SELECT count(*) FROM cooccurrence_edges`, &st.Edges},
		{`SELECT count(*) FROM keyword_hits`, &st.KeywordHits},
	}
	for _, q := range scalars {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return st, fmt.Errorf("querying status: %w", err)
		}
	}

	st.SourceTags = make(map[string]int)
	rows, err := s.db.QueryContext(ctx, `SELECT source_tag, count(*) FROM documents GROUP BY source_tag`)
	if err != nil {
		return st, fmt.Errorf("querying source tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return st, fmt.Errorf("scanning source tag: %w", err)
		}
		st.SourceTags[tag] = n
	}
	return st, rows.Err()
}
