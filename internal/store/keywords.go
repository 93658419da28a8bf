package store

import (
	"context"
	"fmt"

	"github.com/pdiddy/docgraph/pkg/types"
)

// KeywordHit is one keyword match within a document.
type KeywordHit struct {
	DocID      int64
	Keyword    string
	MatchCount int
	Context    string
}

// ReplaceKeywordHits deletes prior hits for the given keywords and
// writes the new scan results in one transaction.
func (s *Store) ReplaceKeywordHits(ctx context.Context, keywords []string, hits []KeywordHit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, kw := range keywords {
		if _, err := tx.ExecContext(ctx, `DELETE FROM keyword_hits WHERE keyword = ?`, kw); err != nil {
			return fmt.Errorf("clearing hits for %q: %w", kw, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keyword_hits (document_id, keyword, match_count, context) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing hit insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hits {
		if _, err := stmt.ExecContext(ctx, h.DocID, h.Keyword, h.MatchCount, h.Context); err != nil {
			return fmt.Errorf("inserting hit for %q: %w", h.Keyword, err)
		}
	}
	return tx.Commit()
}

// KeywordHits returns stored hits for a keyword ranked by match count,
// joined with document identity.
func (s *Store) KeywordHits(ctx context.Context, keyword string, limit int) ([]types.DocumentHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.rel_path, d.source_tag, COALESCE(kh.context, '')
		FROM keyword_hits kh
		JOIN documents d ON d.id = kh.document_id
		WHERE kh.keyword = ?
		ORDER BY kh.match_count DESC, d.id ASC
		LIMIT ?`, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("querying keyword hits: %w", err)
	}
	defer rows.Close()

	var out []types.DocumentHit
	for rows.Next() {
		var h types.DocumentHit
		if err := rows.Scan(&h.DocumentID, &h.RelPath, &h.SourceTag, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning keyword hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// TextDocument pairs a document with its cached text for scanning.
type TextDocument struct {
	ID      int64
	RelPath string
	Text    string
}

// ForEachText streams every document with cached text through fn,
// stopping on the first error.
func (s *Store) ForEachText(ctx context.Context, fn func(TextDocument) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.rel_path, tc.extracted_text
		FROM documents d
		JOIN text_cache tc ON tc.document_id = d.id
		WHERE tc.char_count > 0
		ORDER BY d.id`)
	if err != nil {
		return fmt.Errorf("querying cached texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var td TextDocument
		if err := rows.Scan(&td.ID, &td.RelPath, &td.Text); err != nil {
			return fmt.Errorf("scanning cached text: %w", err)
		}
		if err := fn(td); err != nil {
			return err
		}
	}
	return rows.Err()
}
