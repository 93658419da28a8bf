// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/pdiddy/docgraph/internal/normalize"
	"github.com/pdiddy/docgraph/pkg/types"
)

// Span is one tagged entity mention in a text.
type Span struct {
	Text  string
	Label types.EntityLabel
}

// Tagger finds entity mentions in extracted text.
type Tagger interface {
	Tag(text string) []Span
}

// DictionaryTagger matches a fixed set of surface forms with an
// Aho-Corasick automaton. Matching is case-insensitive and respects
// word boundaries; overlapping matches keep the leftmost-longest.
type DictionaryTagger struct {
	ac     *ahocorasick.Automaton
	labels []types.EntityLabel // by pattern id
}

// NewDictionaryTagger compiles surface forms into an automaton. The
// map keys are matched case-insensitively.
func NewDictionaryTagger(patterns map[string]types.EntityLabel) (*DictionaryTagger, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("empty pattern set")
	}

	surfaces := make([]string, 0, len(patterns))
	for p := range patterns {
		surfaces = append(surfaces, strings.ToLower(p))
	}
	sort.Strings(surfaces)

	ac, err := ahocorasick.NewBuilder().
		AddStrings(surfaces).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building automaton: %w", err)
	}

	labels := make([]types.EntityLabel, len(surfaces))
	lowered := make(map[string]types.EntityLabel, len(patterns))
	for p, l := range patterns {
		lowered[strings.ToLower(p)] = l
	}
	for i, s := range surfaces {
		labels[i] = lowered[s]
	}

	return &DictionaryTagger{ac: ac, labels: labels}, nil
}

// LoadDictionary builds a tagger from a dictionary file with one
// "LABEL<TAB>name" entry per line, merged with the alias table's name
// variants (tagged PERSON). Blank lines and #-comments are skipped.
// An empty path uses the alias variants alone.
func LoadDictionary(path string, aliases *normalize.AliasTable) (*DictionaryTagger, error) {
	patterns := make(map[string]types.EntityLabel)
	if aliases != nil {
		for _, v := range aliases.Variants() {
			patterns[v] = types.LabelPerson
		}
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening dictionary: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			label, name, ok := strings.Cut(line, "\t")
			if !ok {
				return nil, fmt.Errorf("dictionary line %d: expected LABEL<TAB>name", lineNo)
			}
			patterns[strings.TrimSpace(name)] = types.EntityLabel(strings.TrimSpace(label))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading dictionary: %w", err)
		}
	}

	return NewDictionaryTagger(patterns)
}

// Tag scans text and returns word-bounded mentions.
func (d *DictionaryTagger) Tag(text string) []Span {
	lowered := strings.ToLower(text)
	matches := d.ac.FindAllOverlapping([]byte(lowered))

	type cand struct {
		start, end int
		label      types.EntityLabel
	}
	cands := make([]cand, 0, len(matches))
	for _, m := range matches {
		if !wordBounded(lowered, m.Start, m.End) {
			continue
		}
		cands = append(cands, cand{m.Start, m.End, d.labels[m.PatternID]})
	}

	// Leftmost-longest wins among overlaps.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end > cands[j].end
	})

	var spans []Span
	lastEnd := -1
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		// Offsets index the lowered text; slicing the original could
		// misalign on non-ASCII case folds.
		spans = append(spans, Span{Text: lowered[c.start:c.end], Label: c.label})
		lastEnd = c.end
	}
	return spans
}

// wordBounded reports whether s[start:end] is not embedded inside a
// larger word.
func wordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
