//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run invokes the built docgraph binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", bin, args, err)
	}
	return nil
}

// Catalog registers corpus files from corpus/ into the store.
func Catalog() error {
	mg.Deps(Build)
	return run("catalog", "corpus")
}

// Ingest extracts text and tags entities for all pending documents.
func Ingest() error {
	mg.Deps(Build)
	return run("ingest")
}

// Aggregate rebuilds the co-occurrence edge table.
func Aggregate() error {
	mg.Deps(Build)
	return run("aggregate")
}

// Graph builds the graph view with communities and layout into output/graphs/.
func Graph() error {
	mg.Deps(Build)
	if err := os.MkdirAll("output/graphs", 0o755); err != nil {
		return fmt.Errorf("creating output/graphs: %w", err)
	}
	return run("build-view",
		"--communities", "--layout",
		"--out", "output/graphs/graph.json",
		"--names-out", "output/graphs/names.jsonl",
		"--edges-out", "output/graphs/edges.jsonl")
}

// Pipeline runs catalog, ingest, aggregate, and graph in sequence.
func Pipeline() error {
	mg.SerialDeps(Catalog, Ingest, Aggregate, Graph)
	return nil
}
