// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [corpus-root]",
	Short: "Register corpus files in the document catalog",
	Long: `Catalog walks a corpus directory and registers every matching file as a
pending document, idempotent on relative path. Extraction happens later,
in the ingest stage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	root := stringSetting(cmd, "root", "corpus.root")
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return fmt.Errorf("corpus root required: pass it as an argument or set corpus.root")
	}
	sourceTag := stringSetting(cmd, "source-tag", "corpus.source_tag")
	if sourceTag == "" {
		sourceTag = filepath.Base(root)
	}
	extensions, _ := cmd.Flags().GetStringSlice("ext")

	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[strings.ToLower(e)] = true
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var added, seen, skipped int
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			skipped++
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		created, err := st.CatalogFile(ctx, filepath.ToSlash(rel), sourceTag, info.Size())
		if err != nil {
			return err
		}
		if created {
			added++
		} else {
			seen++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "cataloged: %d new, %d existing, %d skipped by extension\n", added, seen, skipped)
	return nil
}

func init() {
	catalogCmd.Flags().String("root", "", "corpus root directory")
	catalogCmd.Flags().String("source-tag", "", "source tag for cataloged documents (default: corpus directory name)")
	catalogCmd.Flags().StringSlice("ext", []string{".txt", ".md"}, "file extensions to catalog")

	rootCmd.AddCommand(catalogCmd)
}
