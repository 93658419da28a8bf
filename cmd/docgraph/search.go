// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/search"
	"github.com/pdiddy/docgraph/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword...]",
	Short: "Scan cached texts for keywords and store the hits",
	Long: `Search runs one pass over every cached document text, counting matches
for each keyword and storing a context snippet per document. Results
replace earlier hits for the same keywords; query them afterwards with
'query docs --keyword'.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	contextChars, _ := cmd.Flags().GetInt("context")

	keywords := args
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		fromFile, err := readLines(file)
		if err != nil {
			return err
		}
		keywords = append(keywords, fromFile...)
	}
	if len(keywords) == 0 {
		return fmt.Errorf("keywords required: pass them as arguments or with --file")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := types.KeywordSearchConfig{ContextChars: contextChars}
	n, err := search.RunKeywords(cmd.Context(), st, keywords, cfg, os.Stdout)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show"); show && n > 0 {
		limit, _ := cmd.Flags().GetInt("limit")
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			hits, err := st.KeywordHits(cmd.Context(), kw, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "\n%s (%d documents)\n", kw, len(hits))
			for _, h := range hits {
				fmt.Fprintf(os.Stdout, "  %-40s  %s\n", h.RelPath, h.Snippet)
			}
		}
	}
	return nil
}

func init() {
	searchCmd.Flags().String("file", "", "file with one keyword per line")
	searchCmd.Flags().Int("context", 0, "snippet radius in characters (0 = default)")
	searchCmd.Flags().Bool("show", false, "print per-keyword hits after scanning")
	searchCmd.Flags().Int("limit", 20, "maximum documents shown per keyword with --show")

	rootCmd.AddCommand(searchCmd)
}
