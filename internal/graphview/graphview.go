// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphview builds the ephemeral visualization snapshot: the
// top entities by document count plus curated seeds, their edges, and
// optional community and layout enrichments. Snapshots are pure
// functions of the stored tables and never persisted.
package graphview

import (
	"context"
	"sort"
	"strings"

	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	defaultMaxNodes      = 100
	defaultMinWeight     = 2
	defaultSeedEdgeFloor = 1

	sizeBase = 8
	sizeStep = 2
	sizeMax  = 50
)

// Node is one rendered entity.
type Node struct {
	Entity    string            `json:"entity"`
	Label     types.EntityLabel `json:"label,omitempty"`
	Documents int               `json:"documents"`
	Mentions  int               `json:"mentions"`
	Size      int               `json:"size"`
	Seed      bool              `json:"seed,omitempty"`
	Primary   bool              `json:"primary,omitempty"`
	Community int               `json:"community"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Z         float64           `json:"z"`
}

// View is one graph snapshot.
type View struct {
	Nodes []Node       `json:"nodes"`
	Edges []types.Edge `json:"edges"`
}

// Build assembles a snapshot: top cfg.MaxNodes entities by document
// count with seeds force-included, then edges among the selected set.
// Edges touching a seed pass at cfg.SeedEdgeFloor instead of
// cfg.MinWeight, an asymmetric filter keeping weak links to
// high-interest names visible. Non-seed nodes left isolated by edge
// filtering are dropped; seeds always stay.
func Build(ctx context.Context, st *store.Store, cfg types.GraphConfig) (*View, error) {
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = defaultMaxNodes
	}
	if cfg.MinWeight <= 0 {
		cfg.MinWeight = defaultMinWeight
	}
	if cfg.SeedEdgeFloor <= 0 {
		cfg.SeedEdgeFloor = defaultSeedEdgeFloor
	}
	if cfg.MinDocuments <= 0 {
		cfg.MinDocuments = 1
	}

	stats, err := st.TopEntities(ctx, cfg.Label, cfg.MinDocuments, cfg.MaxNodes)
	if err != nil {
		return nil, err
	}

	// Stored entities are canonical lowercase; fold curated lists to match.
	primaries := make(map[string]bool, len(cfg.PrimarySubjects))
	seeds := make(map[string]bool, len(cfg.Seeds)+len(cfg.PrimarySubjects))
	for _, s := range cfg.Seeds {
		seeds[strings.ToLower(s)] = true
	}
	// Primary subjects are seeds with top rendering priority.
	for _, s := range cfg.PrimarySubjects {
		s = strings.ToLower(s)
		primaries[s] = true
		seeds[s] = true
	}

	selected := make(map[string]types.EntityStat, len(stats))
	for _, s := range stats {
		selected[s.Entity] = s
	}

	// Seeds outside the top-K cut come in by direct lookup.
	var missing []string
	for s := range seeds {
		if _, ok := selected[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		extra, err := st.EntityStats(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, s := range missing {
			if es, ok := extra[s]; ok {
				selected[s] = es
			} else {
				// Seed never observed; keep a zero-stat node so the
				// curated set renders complete.
				selected[s] = types.EntityStat{Entity: s}
			}
		}
	}

	floor := cfg.SeedEdgeFloor
	if cfg.MinWeight < floor {
		floor = cfg.MinWeight
	}
	allEdges, err := st.EdgesAbove(ctx, floor)
	if err != nil {
		return nil, err
	}

	connected := make(map[string]bool)
	var edges []types.Edge
	for _, e := range allEdges {
		if _, ok := selected[e.EntityA]; !ok {
			continue
		}
		if _, ok := selected[e.EntityB]; !ok {
			continue
		}
		touchesSeed := seeds[e.EntityA] || seeds[e.EntityB]
		if e.DocCount < cfg.MinWeight && !(touchesSeed && e.DocCount >= cfg.SeedEdgeFloor) {
			continue
		}
		edges = append(edges, e)
		connected[e.EntityA] = true
		connected[e.EntityB] = true
	}

	nodes := make([]Node, 0, len(selected))
	for entity, s := range selected {
		if !connected[entity] && !seeds[entity] {
			continue
		}
		size := nodeSize(s.Documents)
		if primaries[entity] {
			size = sizeMax
		}
		nodes = append(nodes, Node{
			Entity:    entity,
			Label:     s.Label,
			Documents: s.Documents,
			Mentions:  s.Mentions,
			Size:      size,
			Seed:      seeds[entity],
			Primary:   primaries[entity],
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Documents != nodes[j].Documents {
			return nodes[i].Documents > nodes[j].Documents
		}
		if nodes[i].Mentions != nodes[j].Mentions {
			return nodes[i].Mentions > nodes[j].Mentions
		}
		return nodes[i].Entity < nodes[j].Entity
	})

	return &View{Nodes: nodes, Edges: edges}, nil
}

// nodeSize scales monotonically with document count, clamped.
func nodeSize(docs int) int {
	size := sizeBase + sizeStep*docs
	if size > sizeMax {
		return sizeMax
	}
	return size
}
