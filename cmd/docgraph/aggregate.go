// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/aggregate"
	"github.com/pdiddy/docgraph/pkg/types"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [min-documents]",
	Short: "Rebuild the co-occurrence edge table",
	Long: `Aggregate recomputes all co-occurrence edges from the current entity
observations and replaces the stored set. The rebuild always truncates
first so alias-table changes take full effect on the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	minDocs, _ := cmd.Flags().GetInt("min-documents")
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid min-documents %q: %w", args[0], err)
		}
		minDocs = n
	}
	label, _ := cmd.Flags().GetString("label")
	maxPerDoc, _ := cmd.Flags().GetInt("max-entities-per-doc")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := types.AggregateConfig{
		Label:             types.EntityLabel(label),
		MinDocuments:      minDocs,
		MaxEntitiesPerDoc: maxPerDoc,
	}
	_, err = aggregate.Rebuild(cmd.Context(), st, cfg, os.Stdout)
	return err
}

func init() {
	aggregateCmd.Flags().Int("min-documents", 0, "minimum co-occurrence count for an edge (0 = default)")
	aggregateCmd.Flags().String("label", "PERSON", "entity label to aggregate (empty = all)")
	aggregateCmd.Flags().Int("max-entities-per-doc", 0, "skip documents with more entities than this (0 = default)")

	rootCmd.AddCommand(aggregateCmd)
}
