// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes raw entity mentions into stable
// identities: whitespace and punctuation cleanup, alias resolution, and
// junk rejection. All functions are pure and deterministic.
package normalize

import (
	"regexp"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

var (
	spaceRE     = regexp.MustCompile(`\s+`)
	numericRE   = regexp.MustCompile(`^\d+$`)
	punctOnlyRE = regexp.MustCompile(`^\W+$`)
	pageRE      = regexp.MustCompile(`^page\s*\d*$`)

	english = stopwords.MustGet("en")
)

// boilerplate prefixes common in scanned legal releases.
var junkPrefixes = []string{"exhibit", "document"}

// noise values that mean "no identity", not an entity.
var noiseNames = map[string]bool{
	"unknown":  true,
	"none":     true,
	"n/a":      true,
	"redacted": true,
}

// Clean collapses whitespace, trims surrounding quotes, and strips
// trailing sentence punctuation. It preserves case.
func Clean(raw string) string {
	s := spaceRE.ReplaceAllString(raw, " ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimRight(s, ".,;:!?")
}

// Normalize maps a raw mention to its canonical lowercase identity.
// The second return is false when the mention is junk or the alias
// table explicitly drops it.
func Normalize(raw string, aliases *AliasTable) (string, bool) {
	s := strings.ToLower(Clean(raw))
	if s == "" {
		return "", false
	}
	if aliases != nil {
		if canonical, drop, ok := aliases.ResolveName(s); ok {
			if drop {
				return "", false
			}
			s = canonical
		}
	}
	if IsJunk(s) {
		return "", false
	}
	return s, true
}

// IsJunk reports whether a cleaned lowercase mention carries no usable
// identity: wrong length, numeric, single letter, punctuation, a
// stopword, boilerplate, or a noise name.
func IsJunk(s string) bool {
	if len(s) < 2 || len(s) > 100 {
		return true
	}
	if numericRE.MatchString(s) || punctOnlyRE.MatchString(s) || pageRE.MatchString(s) {
		return true
	}
	if !strings.Contains(s, " ") && english.Contains(s) {
		return true
	}
	for _, p := range junkPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return noiseNames[s]
}
