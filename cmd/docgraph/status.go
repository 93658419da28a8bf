// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline progress counts from the store",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	status, err := st.Status(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(os.Stdout, "documents:     %d\n", status.Documents)
	fmt.Fprintf(os.Stdout, "  with text:   %d\n", status.WithText)
	fmt.Fprintf(os.Stdout, "  needs OCR:   %d\n", status.NeedsOCR)
	fmt.Fprintf(os.Stdout, "  failed:      %d\n", status.Failed)
	fmt.Fprintf(os.Stdout, "observations:  %d\n", status.Observations)
	fmt.Fprintf(os.Stdout, "entities:      %d\n", status.Entities)
	fmt.Fprintf(os.Stdout, "edges:         %d\n", status.Edges)
	fmt.Fprintf(os.Stdout, "keyword hits:  %d\n", status.KeywordHits)

	if len(status.SourceTags) > 0 {
		tags := make([]string, 0, len(status.SourceTags))
		for tag := range status.SourceTags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		fmt.Fprintln(os.Stdout, "sources:")
		for _, tag := range tags {
			fmt.Fprintf(os.Stdout, "  %-20s %d\n", tag, status.SourceTags[tag])
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().Bool("json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
