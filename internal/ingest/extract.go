// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// Extractor produces plain text for a cataloged document.
type Extractor interface {
	// Extract returns the document text and the extraction method name.
	Extract(ctx context.Context, absPath string) (text, method string, err error)
}

// FileExtractor reads plain-text and sidecar corpora rooted at a
// directory. Binary content (invalid UTF-8) yields empty text so the
// document falls through to needs_ocr.
type FileExtractor struct {
	Root string
}

// Extract reads the file relative to Root.
func (f *FileExtractor) Extract(ctx context.Context, relPath string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(filepath.Join(f.Root, relPath))
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", relPath, err)
	}
	if !utf8.Valid(data) {
		return "", "direct", nil
	}
	return string(data), "direct", nil
}

// extractWithTimeout runs an extraction under a hard wall-clock bound.
// A timeout returns ("", "", context.DeadlineExceeded) even if the
// extractor is still blocked; the goroutine is left to finish alone.
func extractWithTimeout(ctx context.Context, ex Extractor, path string, timeout time.Duration) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text, method string
		err          error
	}
	ch := make(chan result, 1)
	go func() {
		text, method, err := ex.Extract(ctx, path)
		ch <- result{text, method, err}
	}()

	select {
	case r := <-ch:
		return r.text, r.method, r.err
	case <-ctx.Done():
		return "", "", ctx.Err()
	}
}
