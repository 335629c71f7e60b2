// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)

	// Decompose, strip combining marks, recompose. Turns "Piña" into "Pina".
	deaccenter = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeName canonicalizes an entity name for dedup and reference lookups.
// It is the single normalization rule shared by index building and resolution:
// both sides must agree or dedup silently breaks.
func NormalizeName(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Slugify converts an entity name to a URL-safe slug.
// Used for ingredient and cocktail identity within a bar.
//
// Rules:
//  1. Strip diacritics ("Piña Colada" → "Pina Colada")
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores, and slashes with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes, trim leading/trailing dashes
//
// Examples:
//
//	"Gin Fizz"      → "gin-fizz"
//	"Piña Colada"   → "pina-colada"
//	"  Old   Pal "  → "old-pal"
//	"Mai-Tai!"      → "mai-tai"
func Slugify(input string) string {
	s, _, err := transform.String(deaccenter, input)
	if err != nil {
		// Transliteration is best effort; fall back to the raw input.
		s = input
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// ScopedSlug builds the per-bar unique slug for an entity: the slugified
// name suffixed with the bar id. Two bars can both have a "Martini" without
// colliding on the global slug column.
func ScopedSlug(name, barID string) string {
	return Slugify(name) + "-" + barID
}
