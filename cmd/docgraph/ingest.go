// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgraph/internal/ingest"
	"github.com/pdiddy/docgraph/internal/normalize"
	"github.com/pdiddy/docgraph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract text and entity observations from cataloged documents",
	Long: `Ingest runs the extraction workers over every document that still needs
processing: text extraction under a hard timeout, dictionary tagging,
normalization into canonical entities, and batched commits. Documents
whose extraction times out are flagged needs_ocr and skipped, not
retried inline. Reruns resume where the last run stopped.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := stringSetting(cmd, "root", "corpus.root")
	if root == "" {
		return fmt.Errorf("corpus root required: pass --root or set corpus.root")
	}

	aliases, tagger, cfg, err := ingestSetup(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := ingest.Run(cmd.Context(), st, &ingest.FileExtractor{Root: root}, tagger, aliases, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	return nil
}

var ingestEmailsCmd = &cobra.Command{
	Use:   "ingest-emails [threads.jsonl]",
	Short: "Ingest email threads from a JSONL dump",
	Long: `Ingest-emails reads one thread per line and stores each as a document
with PERSON observations for its participants. Automated senders are
filtered; threads already ingested are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestEmails,
}

func runIngestEmails(cmd *cobra.Command, args []string) error {
	aliasFile := stringSetting(cmd, "aliases", "ingest.alias_file")
	aliases, err := normalize.LoadAliasTable(aliasFile)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := ingest.IngestEmails(cmd.Context(), st, args[0], aliases, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d thread(s) failed ingestion", summary.Failed)
	}
	return nil
}

// ingestSetup resolves the alias table, tagger, and worker settings
// shared by the ingest paths.
func ingestSetup(cmd *cobra.Command) (*normalize.AliasTable, ingest.Tagger, types.IngestConfig, error) {
	aliasFile := stringSetting(cmd, "aliases", "ingest.alias_file")
	aliases, err := normalize.LoadAliasTable(aliasFile)
	if err != nil {
		return nil, nil, types.IngestConfig{}, err
	}

	dictFile := stringSetting(cmd, "dictionary", "ingest.dictionary_file")
	tagger, err := ingest.LoadDictionary(dictFile, aliases)
	if err != nil {
		return nil, nil, types.IngestConfig{}, err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = viper.GetInt("ingest.workers")
	}
	commitEvery, _ := cmd.Flags().GetInt("commit-every")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxChars, _ := cmd.Flags().GetInt("max-text-chars")

	cfg := types.IngestConfig{
		Workers:        workers,
		CommitEvery:    commitEvery,
		ExtractTimeout: timeout,
		MaxTextChars:   maxChars,
		AliasFile:      aliasFile,
		DictionaryFile: dictFile,
	}
	return aliases, tagger, cfg, nil
}

func init() {
	for _, c := range []*cobra.Command{ingestCmd, ingestEmailsCmd} {
		c.Flags().String("aliases", "", "YAML alias table for canonicalization")
	}
	ingestCmd.Flags().String("root", "", "corpus root directory")
	ingestCmd.Flags().String("dictionary", "", "entity dictionary file (LABEL<TAB>name per line)")
	ingestCmd.Flags().Int("workers", 0, "concurrent extraction workers (0 = default)")
	ingestCmd.Flags().Int("commit-every", 0, "documents per write transaction (0 = default)")
	ingestCmd.Flags().Duration("timeout", 30*time.Second, "per-document extraction timeout")
	ingestCmd.Flags().Int("max-text-chars", 0, "cap on cached text length (0 = default)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestEmailsCmd)
}
