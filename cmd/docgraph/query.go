// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read-only queries over the entity graph",
	Long: `Query exposes the read surface of the store: ranked entities, graph
neighbors, and the documents behind an entity or entity pair. All
subcommands are pure reads; nothing is modified.`,
}

// --- top subcommand ---

var queryTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank entities by distinct-document count",
	RunE:  runQueryTop,
}

func runQueryTop(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	minDocs, _ := cmd.Flags().GetInt("min-documents")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.TopEntities(cmd.Context(), types.EntityLabel(label), minDocs, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	if len(stats) == 0 {
		fmt.Println("No entities found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-8s  %-10s  %s\n", "Rank", "Entity", "Label", "Documents", "Mentions")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for i, s := range stats {
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-8s  %-10d  %d\n", i+1, clip(s.Entity, 40), s.Label, s.Documents, s.Mentions)
	}
	return nil
}

// --- neighbors subcommand ---

var queryNeighborsCmd = &cobra.Command{
	Use:   "neighbors [entity]",
	Short: "List co-occurring entities with shared-document counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryNeighbors,
}

func runQueryNeighbors(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	entity := strings.ToLower(args[0])

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	neighbors, err := st.Neighbors(cmd.Context(), entity, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(neighbors)
	}

	if len(neighbors) == 0 {
		fmt.Printf("No neighbors for %q.\n", entity)
		return nil
	}
	for _, n := range neighbors {
		fmt.Fprintf(os.Stdout, "%-40s  %d\n", clip(n.Entity, 40), n.DocCount)
	}
	return nil
}

// --- docs subcommand ---

var queryDocsCmd = &cobra.Command{
	Use:   "docs [entity] [other-entity]",
	Short: "Show the documents behind an entity, pair, or keyword",
	Long: `Docs lists documents mentioning an entity with a snippet around the
first match. With two entities it restricts to documents mentioning
both. With --keyword it reads the stored keyword hits instead.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runQueryDocs,
}

func runQueryDocs(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	keyword, _ := cmd.Flags().GetString("keyword")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var hits []types.DocumentHit
	switch {
	case keyword != "":
		hits, err = st.KeywordHits(cmd.Context(), strings.ToLower(keyword), limit)
	case len(args) == 2:
		hits, err = st.DocumentsMentioningBoth(cmd.Context(), strings.ToLower(args[0]), strings.ToLower(args[1]), limit)
	case len(args) == 1:
		hits, err = st.DocumentsMentioning(cmd.Context(), strings.ToLower(args[0]), limit)
	default:
		return fmt.Errorf("an entity, an entity pair, or --keyword is required")
	}
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No documents found.")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(os.Stdout, "%-40s  [%s]\n    %s\n", h.RelPath, h.SourceTag, h.Snippet)
	}
	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(hits))
	return nil
}

// --- shared helpers ---

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	queryTopCmd.Flags().String("label", "", "filter by entity label")
	queryTopCmd.Flags().Int("min-documents", 1, "minimum distinct-document count")
	queryTopCmd.Flags().Int("limit", 25, "maximum entities returned")

	queryNeighborsCmd.Flags().Int("limit", 25, "maximum neighbors returned")

	queryDocsCmd.Flags().Int("limit", 20, "maximum documents returned")
	queryDocsCmd.Flags().String("keyword", "", "read stored keyword hits instead of entity observations")

	for _, c := range []*cobra.Command{queryTopCmd, queryNeighborsCmd, queryDocsCmd} {
		c.Flags().Bool("json", false, "output results as JSON")
		queryCmd.AddCommand(c)
	}

	rootCmd.AddCommand(queryCmd)
}
