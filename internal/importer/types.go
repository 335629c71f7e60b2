// Package importer drives the catalog import pipeline: bundle imports that
// provision a bar from structured recipe files, and collection imports
// that ingest user-submitted cocktail payloads asynchronously.
package importer

import "time"

// Flag selects which optional bundle steps run. Base taxonomies always
// import; ingredients and cocktails are opt-in.
type Flag string

// Bundle import flags.
const (
	FlagIngredients Flag = "ingredients"
	FlagCocktails   Flag = "cocktails"
)

// hasFlag reports whether a flag was requested.
func hasFlag(flags []Flag, f Flag) bool {
	for _, v := range flags {
		if v == f {
			return true
		}
	}
	return false
}

// Result reports what a bundle import did, per entity kind.
type Result struct {
	Imported map[string]int
	Skipped  map[string]int
	Errors   []StepError
	Duration time.Duration
}

func newResult() *Result {
	return &Result{
		Imported: make(map[string]int),
		Skipped:  make(map[string]int),
	}
}

// StepError represents a non-fatal import error. Fatal errors (parse and
// persistence failures) abort their step and are returned, not collected.
type StepError struct {
	Step  string `json:"step"`
	Item  string `json:"item,omitempty"`
	Error string `json:"error"`
}
