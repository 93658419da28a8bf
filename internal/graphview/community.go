// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphview

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// layoutSeed fixes the randomized steps so repeated runs over the same
// tables produce the same clusters and coordinates.
const layoutSeed = 42

// DetectCommunities runs modularity-maximizing clustering over the
// snapshot and assigns each node a community id. Ids are ordered by
// community size descending so id 0 is always the largest cluster.
// Deterministic for a given snapshot.
func (v *View) DetectCommunities() {
	if len(v.Nodes) == 0 {
		return
	}

	g := v.weightedGraph()
	reduced := community.Modularize(g, 1.0, rand.NewPCG(layoutSeed, 0))

	groups := reduced.Communities()
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		// Equal-size clusters order by their smallest member id.
		return minID(groups[i]) < minID(groups[j])
	})

	for id, group := range groups {
		for _, n := range group {
			v.Nodes[n.ID()].Community = id
		}
	}
}

// weightedGraph mirrors the snapshot into a gonum graph with node ids
// equal to positions in v.Nodes.
func (v *View) weightedGraph() *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	index := make(map[string]int64, len(v.Nodes))
	for i, n := range v.Nodes {
		id := int64(i)
		index[n.Entity] = id
		g.AddNode(simple.Node(id))
	}
	for _, e := range v.Edges {
		a, okA := index[e.EntityA]
		b, okB := index[e.EntityB]
		if !okA || !okB || a == b {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(a),
			T: simple.Node(b),
			W: float64(e.DocCount),
		})
	}
	return g
}

func minID(group []graph.Node) int64 {
	m := group[0].ID()
	for _, n := range group[1:] {
		if n.ID() < m {
			m = n.ID()
		}
	}
	return m
}
