// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphview

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Layout computes 3D coordinates by principal component analysis over
// the log-scaled co-occurrence matrix: each node's row is its edge
// weights to every other node plus its own mention total on the
// diagonal, log1p-compressed so a handful of very heavy edges do not
// flatten the rest of the embedding. Fewer than three nodes get
// trivial coordinates.
func (v *View) Layout() error {
	n := len(v.Nodes)
	if n < 3 {
		for i := range v.Nodes {
			v.Nodes[i].X = float64(i)
		}
		return nil
	}

	index := make(map[string]int, n)
	for i, node := range v.Nodes {
		index[node.Entity] = i
	}

	data := mat.NewDense(n, n, nil)
	for i, node := range v.Nodes {
		// Diagonal carries each node's own mention mass so heavily
		// mentioned but weakly connected nodes still separate.
		data.Set(i, i, math.Log1p(float64(node.Mentions)))
	}
	for _, e := range v.Edges {
		i, okA := index[e.EntityA]
		j, okB := index[e.EntityB]
		if !okA || !okB {
			continue
		}
		w := math.Log1p(float64(e.DocCount))
		data.Set(i, j, w)
		data.Set(j, i, w)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return fmt.Errorf("principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, n, 0, 3))

	for i := range v.Nodes {
		v.Nodes[i].X = proj.At(i, 0)
		v.Nodes[i].Y = proj.At(i, 1)
		v.Nodes[i].Z = proj.At(i, 2)
	}
	return nil
}
