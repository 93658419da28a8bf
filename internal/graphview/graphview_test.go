// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphview

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedObservations writes one document observing each listed entity.
func seedObservations(t *testing.T, s *store.Store, relPath string, entities ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.CatalogFile(ctx, relPath, "test", 1); err != nil {
		t.Fatal(err)
	}
	doc, err := s.Document(ctx, relPath)
	if err != nil {
		t.Fatal(err)
	}
	obs := make([]types.Observation, len(entities))
	for i, e := range entities {
		obs[i] = types.Observation{Entity: e, Label: types.LabelPerson, Count: 1}
	}
	if err := s.InsertObservations(ctx, doc.ID, obs); err != nil {
		t.Fatal(err)
	}
}

func nodeByEntity(v *View, entity string) *Node {
	for i := range v.Nodes {
		if v.Nodes[i].Entity == entity {
			return &v.Nodes[i]
		}
	}
	return nil
}

func TestBuildSeedForceInclusionAndEdgeFloor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// alice and bob are frequent; fringe appears once, linked weakly
	// to alice.
	for i := 0; i < 3; i++ {
		seedObservations(t, s, fmt.Sprintf("ab-%d.txt", i), "alice", "bob")
	}
	seedObservations(t, s, "fringe.txt", "alice", "fringe")

	edges := []types.Edge{
		{EntityA: "alice", EntityB: "bob", DocCount: 3},
		{EntityA: "alice", EntityB: "fringe", DocCount: 1},
	}
	if err := s.ReplaceEdges(ctx, edges); err != nil {
		t.Fatal(err)
	}

	// Without seeding, the weak edge and the fringe node are pruned.
	view, err := Build(ctx, s, types.GraphConfig{MaxNodes: 10, MinWeight: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Edges) != 1 || nodeByEntity(view, "fringe") != nil {
		t.Errorf("fringe should be pruned: %+v", view)
	}

	// Seeding fringe keeps its weight-1 edge via the lower floor.
	view, err = Build(ctx, s, types.GraphConfig{MaxNodes: 10, MinWeight: 2, Seeds: []string{"fringe"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Edges) != 2 {
		t.Fatalf("expected seed-adjacent weak edge kept, got %+v", view.Edges)
	}
	n := nodeByEntity(view, "fringe")
	if n == nil || !n.Seed {
		t.Fatalf("fringe should be a seed node: %+v", view.Nodes)
	}
}

func TestBuildSeedOutsideTopCut(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedObservations(t, s, "d1.txt", "alice", "bob", "carol")
	if err := s.ReplaceEdges(ctx, []types.Edge{
		{EntityA: "alice", EntityB: "bob", DocCount: 2},
	}); err != nil {
		t.Fatal(err)
	}

	// MaxNodes 2 cuts carol from the ranked scan; seeding restores it,
	// and an unobserved seed still gets a zero-stat node.
	cfg := types.GraphConfig{MaxNodes: 2, MinWeight: 1, Seeds: []string{"carol", "ghost"}}
	view, err := Build(ctx, s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if nodeByEntity(view, "carol") == nil {
		t.Error("seed outside top cut must be force-included")
	}
	ghost := nodeByEntity(view, "ghost")
	if ghost == nil || ghost.Documents != 0 {
		t.Errorf("unobserved seed should render with zero stats: %+v", ghost)
	}
}

func TestBuildPrimarySubjectsMaxSize(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedObservations(t, s, "d1.txt", "alice", "bob")
	if err := s.ReplaceEdges(ctx, []types.Edge{
		{EntityA: "alice", EntityB: "bob", DocCount: 1},
	}); err != nil {
		t.Fatal(err)
	}

	cfg := types.GraphConfig{MaxNodes: 10, MinWeight: 1, PrimarySubjects: []string{"alice"}}
	view, err := Build(ctx, s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	alice := nodeByEntity(view, "alice")
	if alice == nil || !alice.Primary || !alice.Seed || alice.Size != sizeMax {
		t.Errorf("primary subject should render at max size: %+v", alice)
	}
	bob := nodeByEntity(view, "bob")
	if bob == nil || bob.Size != sizeBase+sizeStep {
		t.Errorf("ordinary node size off: %+v", bob)
	}
}

func TestBuildMinDocumentsFloor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// alice and bob pass the two-document floor, onesie does not.
	seedObservations(t, s, "d1.txt", "alice", "bob", "onesie")
	seedObservations(t, s, "d2.txt", "alice", "bob")
	if err := s.ReplaceEdges(ctx, []types.Edge{
		{EntityA: "alice", EntityB: "bob", DocCount: 2},
		{EntityA: "alice", EntityB: "onesie", DocCount: 1},
	}); err != nil {
		t.Fatal(err)
	}

	view, err := Build(ctx, s, types.GraphConfig{MaxNodes: 10, MinWeight: 1, MinDocuments: 2})
	if err != nil {
		t.Fatal(err)
	}
	if nodeByEntity(view, "onesie") != nil {
		t.Errorf("single-document entity should fall below the floor: %+v", view.Nodes)
	}
	if nodeByEntity(view, "alice") == nil {
		t.Errorf("alice should pass the floor: %+v", view.Nodes)
	}

	// Seeding bypasses the floor.
	view, err = Build(ctx, s, types.GraphConfig{MaxNodes: 10, MinWeight: 1, MinDocuments: 2, Seeds: []string{"onesie"}})
	if err != nil {
		t.Fatal(err)
	}
	if nodeByEntity(view, "onesie") == nil {
		t.Errorf("seeded entity must bypass the floor: %+v", view.Nodes)
	}
}

func TestBuildFoldsSeedCase(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedObservations(t, s, "d1.txt", "jeffrey epstein", "alice")
	if err := s.ReplaceEdges(ctx, []types.Edge{
		{EntityA: "alice", EntityB: "jeffrey epstein", DocCount: 1},
	}); err != nil {
		t.Fatal(err)
	}

	cfg := types.GraphConfig{
		MaxNodes:        10,
		MinWeight:       1,
		Seeds:           []string{"Jeffrey Epstein"},
		PrimarySubjects: []string{"JEFFREY EPSTEIN"},
	}
	view, err := Build(ctx, s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	n := nodeByEntity(view, "jeffrey epstein")
	if n == nil || !n.Seed || !n.Primary {
		t.Fatalf("mixed-case seed should fold to the stored entity: %+v", view.Nodes)
	}
	if n.Documents != 1 {
		t.Errorf("folded seed lost its stats: %+v", n)
	}
}

func TestBuildWithCommunitiesAndLayout(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedObservations(t, s, fmt.Sprintf("ab-%d.txt", i), "alice", "bob", "carol")
	}
	if err := s.ReplaceEdges(ctx, []types.Edge{
		{EntityA: "alice", EntityB: "bob", DocCount: 3},
		{EntityA: "alice", EntityB: "carol", DocCount: 3},
		{EntityA: "bob", EntityB: "carol", DocCount: 3},
	}); err != nil {
		t.Fatal(err)
	}

	// A strict edge filter with a forced seed, then both enrichments.
	cfg := types.GraphConfig{MaxNodes: 10, MinWeight: 5, Seeds: []string{"alice"}}
	view, err := Build(ctx, s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if nodeByEntity(view, "alice") == nil {
		t.Fatalf("seed dropped under strict filter: %+v", view.Nodes)
	}

	view.DetectCommunities()
	if err := view.Layout(); err != nil {
		t.Fatal(err)
	}
	for _, n := range view.Nodes {
		if n.Community < 0 {
			t.Errorf("node %s missing community id", n.Entity)
		}
	}
}

func TestNodeSizeClamped(t *testing.T) {
	if nodeSize(0) != sizeBase {
		t.Errorf("zero docs: %d", nodeSize(0))
	}
	if nodeSize(1000) != sizeMax {
		t.Errorf("clamp failed: %d", nodeSize(1000))
	}
}

func TestDetectCommunitiesTwoCliques(t *testing.T) {
	view := &View{
		Nodes: []Node{
			{Entity: "a1"}, {Entity: "a2"}, {Entity: "a3"},
			{Entity: "b1"}, {Entity: "b2"}, {Entity: "b3"},
		},
		Edges: []types.Edge{
			{EntityA: "a1", EntityB: "a2", DocCount: 5},
			{EntityA: "a1", EntityB: "a3", DocCount: 5},
			{EntityA: "a2", EntityB: "a3", DocCount: 5},
			{EntityA: "b1", EntityB: "b2", DocCount: 5},
			{EntityA: "b1", EntityB: "b3", DocCount: 5},
			{EntityA: "b2", EntityB: "b3", DocCount: 5},
			// One weak bridge between the cliques.
			{EntityA: "a3", EntityB: "b1", DocCount: 1},
		},
	}

	view.DetectCommunities()

	aComm := nodeByEntity(view, "a1").Community
	bComm := nodeByEntity(view, "b1").Community
	if aComm == bComm {
		t.Fatalf("cliques should split into distinct communities: %+v", view.Nodes)
	}
	for _, e := range []string{"a2", "a3"} {
		if nodeByEntity(view, e).Community != aComm {
			t.Errorf("%s not in a's community", e)
		}
	}
	for _, e := range []string{"b2", "b3"} {
		if nodeByEntity(view, e).Community != bComm {
			t.Errorf("%s not in b's community", e)
		}
	}

	// Repeat runs are deterministic.
	first := make([]int, len(view.Nodes))
	for i, n := range view.Nodes {
		first[i] = n.Community
	}
	view.DetectCommunities()
	for i, n := range view.Nodes {
		if n.Community != first[i] {
			t.Fatalf("community ids changed between runs at %d", i)
		}
	}
}

func TestLayoutAssignsCoordinates(t *testing.T) {
	view := &View{
		Nodes: []Node{{Entity: "a"}, {Entity: "b"}, {Entity: "c"}, {Entity: "d"}},
		Edges: []types.Edge{
			{EntityA: "a", EntityB: "b", DocCount: 10},
			{EntityA: "c", EntityB: "d", DocCount: 10},
			{EntityA: "b", EntityB: "c", DocCount: 1},
		},
	}
	if err := view.Layout(); err != nil {
		t.Fatal(err)
	}

	// Connected nodes must spread out rather than collapse to a point.
	distinct := make(map[[3]float64]bool)
	for _, n := range view.Nodes {
		distinct[[3]float64{n.X, n.Y, n.Z}] = true
	}
	if len(distinct) < 2 {
		t.Errorf("layout collapsed: %+v", view.Nodes)
	}

	// Same input, same embedding.
	first := make([]Node, len(view.Nodes))
	copy(first, view.Nodes)
	if err := view.Layout(); err != nil {
		t.Fatal(err)
	}
	for i, n := range view.Nodes {
		if n.X != first[i].X || n.Y != first[i].Y || n.Z != first[i].Z {
			t.Fatalf("layout not deterministic at node %d", i)
		}
	}
}

func TestLayoutTinyView(t *testing.T) {
	view := &View{Nodes: []Node{{Entity: "only"}}}
	if err := view.Layout(); err != nil {
		t.Fatal(err)
	}
}

func TestExports(t *testing.T) {
	view := &View{
		Nodes: []Node{{Entity: "alice", Mentions: 5, Documents: 2}},
		Edges: []types.Edge{{EntityA: "alice", EntityB: "bob", DocCount: 3}},
	}

	var buf bytes.Buffer
	if err := view.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"nodes"`) {
		t.Errorf("snapshot JSON missing nodes: %s", buf.String())
	}

	buf.Reset()
	if err := view.ExportNames(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"file_count":2`) {
		t.Errorf("names export wrong: %s", buf.String())
	}

	buf.Reset()
	if err := view.ExportEdges(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"weight":3`) {
		t.Errorf("edges export wrong: %s", buf.String())
	}
}
