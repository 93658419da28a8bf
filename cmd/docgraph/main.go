// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docgraph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "docgraph",
	Short: "Entity co-occurrence graphs over released document corpora",
	Long: `docgraph builds a queryable entity graph from released documents: it
catalogs a corpus, extracts and tags text, normalizes entity mentions into
canonical identities, aggregates co-occurrence edges, and renders graph
snapshots with community and layout enrichment.

Each pipeline stage is a subcommand: catalog, ingest, ingest-emails,
aggregate, build-view, search, and the read-only query surface.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docgraph.yaml or ~/.config/docgraph/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (default: ./docgraph.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docgraph"))
		}
	}

	viper.SetEnvPrefix("DOCGRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
