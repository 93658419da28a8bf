// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedText(t *testing.T, s *store.Store, relPath, text string) {
	t.Helper()
	if _, _, err := s.CreateTextDocument(context.Background(), relPath, "test", text, "direct", nil); err != nil {
		t.Fatal(err)
	}
}

func TestRunKeywords(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedText(t, s, "a.txt", "The flight manifest listed the island twice. Another flight followed.")
	seedText(t, s, "b.txt", "Nothing relevant in this one.")
	seedText(t, s, "c.txt", "ISLAND logs, all caps.")

	var buf bytes.Buffer
	n, err := RunKeywords(ctx, s, []string{"Flight", "island"}, types.KeywordSearchConfig{}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	// a.txt hits both keywords, c.txt hits island.
	if n != 3 {
		t.Fatalf("expected 3 hits, got %d (output: %s)", n, buf.String())
	}

	hits, err := s.KeywordHits(ctx, "flight", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].RelPath != "a.txt" {
		t.Fatalf("unexpected flight hits: %+v", hits)
	}
	if !strings.Contains(hits[0].Snippet, "flight manifest") {
		t.Errorf("snippet missing context: %q", hits[0].Snippet)
	}

	hits, err = s.KeywordHits(ctx, "island", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected case-insensitive island hits in 2 docs: %+v", hits)
	}
}

func TestRunKeywordsRerunReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedText(t, s, "a.txt", "flight flight flight")

	var buf bytes.Buffer
	if _, err := RunKeywords(ctx, s, []string{"flight"}, types.KeywordSearchConfig{}, &buf); err != nil {
		t.Fatal(err)
	}
	if _, err := RunKeywords(ctx, s, []string{"flight"}, types.KeywordSearchConfig{}, &buf); err != nil {
		t.Fatal(err)
	}

	hits, err := s.KeywordHits(ctx, "flight", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("rerun must replace, not duplicate: %+v", hits)
	}

	st, err := s.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.KeywordHits != 1 {
		t.Errorf("expected 1 stored hit, got %d", st.KeywordHits)
	}
}

func TestRunKeywordsNoKeywords(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	if _, err := RunKeywords(context.Background(), s, nil, types.KeywordSearchConfig{}, &buf); err == nil {
		t.Error("expected error for empty keyword list")
	}
}

func TestContextWindow(t *testing.T) {
	text := strings.Repeat("x", 300) + " needle " + strings.Repeat("y", 300)
	got := contextWindow(text, 301, 6, 20)
	if !strings.Contains(got, "needle") {
		t.Errorf("window missing match: %q", got)
	}
	if len(got) > 60 {
		t.Errorf("window too wide: %d chars", len(got))
	}
}
