// Package classifier assigns trust-taxonomy labels to hunks: first via a
// deterministic static rule engine, then via a batched AI subprocess
// fallback for whatever the rules can't decide. A failed subprocess batch
// is logged and counted, not retried; the repair-then-parse JSON pipeline
// follows internal/llm/json_repair.go, now via kaptinlin/jsonrepair
// directly.
package classifier

import (
	"fmt"
)

// builtinLabels is the closed, versioned trust taxonomy (spec.md §4.4).
var builtinLabels = map[string]bool{
	"move:code":               true,
	"generated:lockfile":      true,
	"file:added-empty":        true,
	"formatting:whitespace":   true,
	"formatting:line-length":  true,
	"formatting:style":        true,
	"comments:added":          true,
	"comments:removed":        true,
	"comments:modified":       true,
	"type-annotations:modified": true,
	"imports:added":           true,
	"imports:removed":         true,
	"imports:reordered":       true,
	"imports:modified":        true,
}

// staticOnlyLabels are reserved for the static engine and excluded from
// the AI prompt's taxonomy listing.
var staticOnlyLabels = map[string]bool{
	"formatting:whitespace": true,
	"generated:lockfile":    true,
	"move:code":             true,
	"file:added-empty":      true,
}

// Taxonomy is the merged built-in + repo-local custom label set.
type Taxonomy struct {
	labels map[string]bool
}

// CustomCategory is one repo-local label addition, loaded from a TOML
// overlay file via koanf.
type CustomCategory struct {
	Labels []string `koanf:"labels"`
}

// LoadTaxonomy merges builtinLabels with any custom labels supplied.
func LoadTaxonomy(custom []string) *Taxonomy {
	t := &Taxonomy{labels: make(map[string]bool, len(builtinLabels)+len(custom))}
	for l := range builtinLabels {
		t.labels[l] = true
	}
	for _, l := range custom {
		t.labels[l] = true
	}
	return t
}

// Valid reports whether label is a member of the taxonomy.
func (t *Taxonomy) Valid(label string) bool {
	return t.labels[label]
}

// ValidateAll splits labels into those in the taxonomy and those dropped
// because they are not.
func (t *Taxonomy) ValidateAll(labels []string) (valid []string, dropped []string) {
	for _, l := range labels {
		if t.Valid(l) {
			valid = append(valid, l)
		} else {
			dropped = append(dropped, l)
		}
	}
	return valid, dropped
}

// AllLabels lists every label in the merged taxonomy, including the
// static-only labels PromptLabels() omits — for surfaces that display the
// full label set rather than constrain what the AI may choose.
func (t *Taxonomy) AllLabels() []string {
	out := make([]string, 0, len(t.labels))
	for l := range t.labels {
		out = append(out, l)
	}
	return out
}

// PromptLabels lists every label the AI fallback is allowed to use: the
// full taxonomy minus the labels reserved for the static engine.
func (t *Taxonomy) PromptLabels() []string {
	var out []string
	for l := range t.labels {
		if !staticOnlyLabels[l] {
			out = append(out, l)
		}
	}
	return out
}

func (t *Taxonomy) String() string {
	return fmt.Sprintf("Taxonomy(%d labels)", len(t.labels))
}
