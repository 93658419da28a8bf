// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate rebuilds the co-occurrence edge table from entity
// observations. The rebuild is truncate-and-replace: the edge table is
// derived state and never updated incrementally.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	defaultMinDocuments      = 2
	defaultMaxEntitiesPerDoc = 500
)

type pair struct {
	a, b string
}

// Rebuild recomputes all co-occurrence edges and replaces the stored
// set, returning the number of edges written. Pairs are the unordered
// 2-combinations of each document's canonical entity set; an edge is
// kept when its accumulated document count reaches cfg.MinDocuments.
func Rebuild(ctx context.Context, st *store.Store, cfg types.AggregateConfig, w io.Writer) (int, error) {
	if cfg.MinDocuments <= 0 {
		cfg.MinDocuments = defaultMinDocuments
	}
	if cfg.MaxEntitiesPerDoc <= 0 {
		cfg.MaxEntitiesPerDoc = defaultMaxEntitiesPerDoc
	}

	byDoc, err := st.ObservationsByDocument(ctx, cfg.Label)
	if err != nil {
		return 0, err
	}

	counts := make(map[pair]int)
	skippedDocs := 0
	for _, entities := range byDoc {
		if len(entities) > cfg.MaxEntitiesPerDoc {
			// OCR noise can tag hundreds of names in one document;
			// pairing those would swamp the table with junk edges.
			skippedDocs++
			continue
		}
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				counts[pair{entities[i], entities[j]}]++
			}
		}
	}

	edges := make([]types.Edge, 0, len(counts))
	for p, n := range counts {
		if n >= cfg.MinDocuments {
			edges = append(edges, types.Edge{EntityA: p.a, EntityB: p.b, DocCount: n})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].EntityA != edges[j].EntityA {
			return edges[i].EntityA < edges[j].EntityA
		}
		return edges[i].EntityB < edges[j].EntityB
	})

	if err := st.ReplaceEdges(ctx, edges); err != nil {
		return 0, err
	}

	if skippedDocs > 0 {
		fmt.Fprintf(w, "skipped %d documents over the %d-entity cap\n", skippedDocs, cfg.MaxEntitiesPerDoc)
	}
	fmt.Fprintf(w, "edges with %d+ co-occurrences: %d\n", cfg.MinDocuments, len(edges))
	return len(edges), nil
}
