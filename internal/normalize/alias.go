// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// AliasTable maps known entity variants to canonical identities. A nil
// value in Names drops the variant entirely. Email resolution takes
// precedence over name resolution when both are known.
type AliasTable struct {
	// Names maps lowercase variants to canonical names; null drops.
	Names map[string]*string `yaml:"aliases"`

	// Emails maps lowercase addresses to canonical names.
	Emails map[string]string `yaml:"emails"`
}

// DefaultAliasTable returns the built-in table covering the variants
// seen recurring across the released corpora.
func DefaultAliasTable() *AliasTable {
	s := func(v string) *string { return &v }
	return &AliasTable{
		Names: map[string]*string{
			"jeffrey e.":       s("jeffrey epstein"),
			"jeff epstein":     s("jeffrey epstein"),
			"jeff":             s("jeffrey epstein"),
			"je":               s("jeffrey epstein"),
			"j":                s("jeffrey epstein"),
			"jeevacation":      s("jeffrey epstein"),
			"ghislaine":        s("ghislaine maxwell"),
			"maxwell":          s("ghislaine maxwell"),
			"g.maxwell":        s("ghislaine maxwell"),
			"weingarten":       s("reid weingarten"),
			"weingarten, reid": s("reid weingarten"),
			"unknown":          nil,
		},
		Emails: map[string]string{
			"jeevacation@gmail.com": "jeffrey epstein",
		},
	}
}

// LoadAliasTable reads a YAML alias file and merges it over the built-in
// defaults; file entries win on conflict. An empty path returns the
// defaults unchanged.
func LoadAliasTable(path string) (*AliasTable, error) {
	table := DefaultAliasTable()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}
	var loaded AliasTable
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}
	for k, v := range loaded.Names {
		table.Names[strings.ToLower(k)] = v
	}
	for k, v := range loaded.Emails {
		table.Emails[strings.ToLower(k)] = strings.ToLower(v)
	}
	return table, nil
}

// ResolveName looks up a lowercase name variant. drop is true when the
// table maps the variant to null; ok is false when the variant is unknown.
func (t *AliasTable) ResolveName(name string) (canonical string, drop, ok bool) {
	v, ok := t.Names[name]
	if !ok {
		return "", false, false
	}
	if v == nil {
		return "", true, true
	}
	return *v, false, true
}

// ResolveEmail looks up a lowercase address, returning the canonical
// name it identifies.
func (t *AliasTable) ResolveEmail(email string) (string, bool) {
	v, ok := t.Emails[email]
	return v, ok
}

// Variants returns every known name variant plus every canonical name,
// for seeding dictionary matchers.
func (t *AliasTable) Variants() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for variant, canonical := range t.Names {
		add(variant)
		if canonical != nil {
			add(*canonical)
		}
	}
	for _, canonical := range t.Emails {
		add(canonical)
	}
	return out
}
