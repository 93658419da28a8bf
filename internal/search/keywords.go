// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search materializes keyword hits over the cached texts so
// repeated queries do not rescan the corpus.
package search

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultContextChars = 150

// RunKeywords scans every cached text for the keywords in one
// Aho-Corasick pass and replaces their stored hits. Matching is
// case-insensitive substring; the context snippet is a window around
// each document's first match. Returns the number of hits written.
func RunKeywords(ctx context.Context, st *store.Store, keywords []string, cfg types.KeywordSearchConfig, w io.Writer) (int, error) {
	if len(keywords) == 0 {
		return 0, fmt.Errorf("no keywords given")
	}
	if cfg.ContextChars <= 0 {
		cfg.ContextChars = defaultContextChars
	}

	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(strings.TrimSpace(k))
	}
	sort.Strings(lowered)

	ac, err := ahocorasick.NewBuilder().
		AddStrings(lowered).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return 0, fmt.Errorf("building automaton: %w", err)
	}

	type hitAgg struct {
		count int
		first int // byte offset of first match
	}

	var hits []store.KeywordHit
	scanned := 0
	err = st.ForEachText(ctx, func(td store.TextDocument) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		scanned++
		text := strings.ToLower(td.Text)

		perKeyword := make(map[int]*hitAgg)
		for _, m := range ac.FindAllOverlapping([]byte(text)) {
			if agg, ok := perKeyword[m.PatternID]; ok {
				agg.count++
			} else {
				perKeyword[m.PatternID] = &hitAgg{count: 1, first: m.Start}
			}
		}

		ids := make([]int, 0, len(perKeyword))
		for id := range perKeyword {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		for _, id := range ids {
			agg := perKeyword[id]
			hits = append(hits, store.KeywordHit{
				DocID:      td.ID,
				Keyword:    lowered[id],
				MatchCount: agg.count,
				Context:    contextWindow(td.Text, agg.first, len(lowered[id]), cfg.ContextChars),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := st.ReplaceKeywordHits(ctx, lowered, hits); err != nil {
		return 0, err
	}

	fmt.Fprintf(w, "scanned %d documents, %d hits for %d keywords\n", scanned, len(hits), len(lowered))
	return len(hits), nil
}

// contextWindow extracts a whitespace-normalized window around a match.
func contextWindow(text string, offset, matchLen, radius int) string {
	start := max(0, offset-radius)
	end := min(len(text), offset+matchLen+radius)
	return strings.Join(strings.Fields(text[start:end]), " ")
}
