// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns cataloged documents into entity observations:
// text extraction, dictionary tagging, and normalized counting, with
// results committed in batches.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docgraph/internal/normalize"
	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	defaultWorkers        = 4
	defaultCommitEvery    = 50
	defaultExtractTimeout = 30 * time.Second
	defaultMaxTextChars   = 50000
)

// Summary holds counts from an ingestion run.
type Summary struct {
	Ingested int
	Skipped  int
	Failed   int
	NeedsOCR int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Ingested + s.Skipped + s.Failed + s.NeedsOCR
}

// HasFailures reports whether any document failed outright.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

type outcome int

const (
	outcomeIngested outcome = iota
	outcomeNeedsOCR
	outcomeFailed
)

type docResult struct {
	relPath  string
	update   store.DocumentUpdate
	entities int
	outcome  outcome
	err      error
}

// Run ingests every document that still needs it: extraction workers
// fan out under an errgroup while a single writer commits results in
// batches of cfg.CommitEvery. Idempotent per document; interruptible
// between documents via ctx.
func Run(ctx context.Context, st *store.Store, ex Extractor, tagger Tagger, aliases *normalize.AliasTable, cfg types.IngestConfig, w io.Writer) (Summary, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.CommitEvery <= 0 {
		cfg.CommitEvery = defaultCommitEvery
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = defaultExtractTimeout
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = defaultMaxTextChars
	}

	docs, err := st.DocumentsNeedingIngest(ctx)
	if err != nil {
		return Summary{}, err
	}

	results := make(chan docResult, cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	go func() {
		for _, doc := range docs {
			if gctx.Err() != nil {
				break
			}
			doc := doc
			g.Go(func() error {
				processDocument(gctx, doc, ex, tagger, aliases, cfg, results)
				return nil
			})
		}
		_ = g.Wait() // workers report per-document outcomes, never errors
		close(results)
	}()

	var summary Summary
	batch := make([]store.DocumentUpdate, 0, cfg.CommitEvery)
	flush := func() error {
		if err := st.ApplyUpdates(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for r := range results {
		batch = append(batch, r.update)
		switch r.outcome {
		case outcomeIngested:
			fmt.Fprintf(w, "ingested %s (%d entities)\n", r.relPath, r.entities)
			summary.Ingested++
		case outcomeNeedsOCR:
			fmt.Fprintf(w, "needs_ocr %s\n", r.relPath)
			summary.NeedsOCR++
		case outcomeFailed:
			fmt.Fprintf(w, "failed  %s: %v\n", r.relPath, r.err)
			summary.Failed++
		}
		if len(batch) >= cfg.CommitEvery {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}
	if err := flush(); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\ningested: %d, needs_ocr: %d, failed: %d\n",
		summary.Ingested, summary.NeedsOCR, summary.Failed)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func processDocument(ctx context.Context, doc store.PendingDocument, ex Extractor, tagger Tagger, aliases *normalize.AliasTable, cfg types.IngestConfig, results chan<- docResult) {
	text := doc.CachedText
	method := ""
	if text == "" {
		var err error
		text, method, err = extractWithTimeout(ctx, ex, doc.RelPath, cfg.ExtractTimeout)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			results <- docResult{
				relPath: doc.RelPath,
				update:  store.DocumentUpdate{DocID: doc.ID, Status: types.ExtractionNeedsOCR},
				outcome: outcomeNeedsOCR,
			}
			return
		case err != nil:
			results <- docResult{
				relPath: doc.RelPath,
				update:  store.DocumentUpdate{DocID: doc.ID, Status: types.ExtractionFailed},
				outcome: outcomeFailed,
				err:     err,
			}
			return
		}
	}

	if text == "" {
		// Nothing extractable; likely a scanned image.
		results <- docResult{
			relPath: doc.RelPath,
			update:  store.DocumentUpdate{DocID: doc.ID, Status: types.ExtractionNeedsOCR},
			outcome: outcomeNeedsOCR,
		}
		return
	}

	text = truncateText(text, cfg.MaxTextChars)
	obs := CountObservations(tagger.Tag(text), aliases)

	results <- docResult{
		relPath: doc.RelPath,
		update: store.DocumentUpdate{
			DocID:        doc.ID,
			Status:       types.ExtractionText,
			Text:         chooseText(method, text),
			Method:       method,
			Observations: obs,
		},
		entities: len(obs),
		outcome:  outcomeIngested,
	}
}

// chooseText returns the text to cache, empty when it was already
// cached from a prior run (method is empty then).
func chooseText(method, text string) string {
	if method == "" {
		return ""
	}
	return text
}

// CountObservations normalizes tagged spans and aggregates mention
// counts per canonical entity, sorted by name for stable output.
func CountObservations(spans []Span, aliases *normalize.AliasTable) []types.Observation {
	type agg struct {
		label types.EntityLabel
		count int
	}
	counts := make(map[string]*agg)
	for _, sp := range spans {
		canonical, ok := normalize.Normalize(sp.Text, aliases)
		if !ok {
			continue
		}
		if a, ok := counts[canonical]; ok {
			a.count++
		} else {
			counts[canonical] = &agg{label: sp.Label, count: 1}
		}
	}

	obs := make([]types.Observation, 0, len(counts))
	for entity, a := range counts {
		obs = append(obs, types.Observation{Entity: entity, Label: a.label, Count: a.count})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Entity < obs[j].Entity })
	return obs
}

// truncateText caps text at max bytes without splitting a rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}
