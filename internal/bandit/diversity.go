package bandit

import (
	"log/slog"

	"github.com/modehaus/stylesynth/models"
)

// TupleSet tracks the secondary-attribute tuples already finalized in a
// batch. Index i is only finalized after being compared against all
// previously finalized indices, which is the ordering barrier the batch
// loop must respect.
type TupleSet map[[3]string]struct{}

// NewTupleSet returns an empty set.
func NewTupleSet() TupleSet {
	return make(TupleSet)
}

// EnsureDistinct finalizes a prompt spec's secondary tuple against the
// tuples already claimed by earlier batch indices. If the tuple
// collides, the spec's secondary selections are swapped post hoc: first
// to the next least-probable ranked candidate, then by rotating the
// enumerated option list from (variationSeed + batchIndex) mod length.
// Earlier indices keep their highest-probability choices; only the
// colliding index moves. Overridden selections are never swapped.
//
// When the option space is smaller than the batch, a duplicate is
// unavoidable and kept.
func (seen TupleSet) EnsureDistinct(spec *models.PromptSpec, choices map[models.Category]Choice, options map[models.Category][]string) {
	tuple := spec.SecondaryTuple()
	if _, dup := seen[tuple]; !dup {
		seen[tuple] = struct{}{}
		return
	}

	for _, cat := range models.SecondaryCategories() {
		sel, ok := spec.Selections[cat]
		if !ok || sel.Source == models.SourceOverride {
			continue
		}
		for _, alt := range alternatives(sel.Value, choices[cat], options[cat], spec.VariationSeed+spec.BatchIndex) {
			spec.Selections[cat] = models.Selection{
				Value:  alt.Value,
				Weight: alt.Score,
				Source: models.SourceSampled,
			}
			tuple = spec.SecondaryTuple()
			if _, dup := seen[tuple]; !dup {
				slog.Debug("batch diversity swap",
					"category", cat, "from", sel.Value, "to", alt.Value,
					"batchIndex", spec.BatchIndex)
				seen[tuple] = struct{}{}
				return
			}
		}
		// Restore before trying the next category.
		spec.Selections[cat] = sel
	}

	slog.Debug("batch diversity: option space exhausted, keeping duplicate tuple",
		"batchIndex", spec.BatchIndex)
	seen[tuple] = struct{}{}
}

// alternatives lists replacement candidates for a colliding value: the
// ranked candidates below the current choice (next least probable
// first), then the enumerated options rotated from the variation index.
func alternatives(current string, choice Choice, options []string, variation int) []Candidate {
	var out []Candidate
	seen := map[string]struct{}{current: {}}

	past := false
	for _, c := range choice.Ranked {
		if c.Value == current {
			past = true
			continue
		}
		if !past {
			continue
		}
		out = append(out, c)
		seen[c.Value] = struct{}{}
	}

	if n := len(options); n > 0 {
		start := variation % n
		if start < 0 {
			start += n
		}
		for k := 0; k < n; k++ {
			value := options[(start+k)%n]
			if _, dup := seen[value]; dup {
				continue
			}
			out = append(out, Candidate{Value: value, Score: choice.Weight})
			seen[value] = struct{}{}
		}
	}
	return out
}
