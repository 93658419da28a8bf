// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgraph/internal/graphview"
	"github.com/pdiddy/docgraph/pkg/types"
)

var buildViewCmd = &cobra.Command{
	Use:   "build-view",
	Short: "Render a graph snapshot from the stored tables",
	Long: `Build-view selects the top entities by document count (seeds always
included), collects their edges, and writes the snapshot as JSON.
Edges touching a seed pass at a lower weight floor than ordinary
edges so curated names keep their weak connections.

Optional enrichment: --communities assigns modularity clusters and
--layout embeds nodes in 3D by PCA over the log-scaled co-occurrence
matrix. Both are deterministic for a given store state.`,
	RunE: runBuildView,
}

func runBuildView(cmd *cobra.Command, args []string) error {
	maxNodes, _ := cmd.Flags().GetInt("max-nodes")
	minDocs, _ := cmd.Flags().GetInt("min-documents")
	minWeight, _ := cmd.Flags().GetInt("min-weight")
	seedFloor, _ := cmd.Flags().GetInt("seed-edge-floor")
	label, _ := cmd.Flags().GetString("label")
	seeds, _ := cmd.Flags().GetStringSlice("seed")
	primaries, _ := cmd.Flags().GetStringSlice("primary")
	if seedsFile, _ := cmd.Flags().GetString("seeds-file"); seedsFile != "" {
		fromFile, err := readLines(seedsFile)
		if err != nil {
			return err
		}
		seeds = append(seeds, fromFile...)
	}
	if len(seeds) == 0 {
		seeds = viper.GetStringSlice("graph.seeds")
	}
	if len(primaries) == 0 {
		primaries = viper.GetStringSlice("graph.primary_subjects")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := types.GraphConfig{
		Label:           types.EntityLabel(label),
		MaxNodes:        maxNodes,
		MinDocuments:    minDocs,
		MinWeight:       minWeight,
		SeedEdgeFloor:   seedFloor,
		Seeds:           seeds,
		PrimarySubjects: primaries,
	}
	view, err := graphview.Build(cmd.Context(), st, cfg)
	if err != nil {
		return err
	}

	if withCommunities, _ := cmd.Flags().GetBool("communities"); withCommunities {
		view.DetectCommunities()
	}
	if withLayout, _ := cmd.Flags().GetBool("layout"); withLayout {
		if err := view.Layout(); err != nil {
			return err
		}
	}

	if namesOut, _ := cmd.Flags().GetString("names-out"); namesOut != "" {
		if err := writeTo(namesOut, view.ExportNames); err != nil {
			return err
		}
	}
	if edgesOut, _ := cmd.Flags().GetString("edges-out"); edgesOut != "" {
		if err := writeTo(edgesOut, view.ExportEdges); err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return view.WriteJSON(os.Stdout)
	}
	if err := writeTo(out, view.WriteJSON); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "snapshot: %d nodes, %d edges -> %s\n", len(view.Nodes), len(view.Edges), out)
	return nil
}

func writeTo(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	buildViewCmd.Flags().Int("max-nodes", 0, "top-N entities to include (0 = default)")
	buildViewCmd.Flags().Int("min-documents", 0, "document floor for ranked entities; seeds bypass it (0 = no floor)")
	buildViewCmd.Flags().Int("min-weight", 0, "minimum edge weight between ordinary nodes (0 = default)")
	buildViewCmd.Flags().Int("seed-edge-floor", 0, "edge weight floor for seed-adjacent edges (0 = default)")
	buildViewCmd.Flags().String("label", "PERSON", "entity label for the ranked scan (empty = all)")
	buildViewCmd.Flags().StringSlice("seed", nil, "entities always kept in the view")
	buildViewCmd.Flags().String("seeds-file", "", "file with one seed entity per line")
	buildViewCmd.Flags().StringSlice("primary", nil, "primary subjects rendered at maximum size")
	buildViewCmd.Flags().Bool("communities", false, "assign modularity community ids")
	buildViewCmd.Flags().Bool("layout", false, "compute 3D PCA layout coordinates")
	buildViewCmd.Flags().String("out", "", "snapshot JSON path (default: stdout)")
	buildViewCmd.Flags().String("names-out", "", "optional JSONL export of nodes")
	buildViewCmd.Flags().String("edges-out", "", "optional JSONL export of edges")

	rootCmd.AddCommand(buildViewCmd)
}
