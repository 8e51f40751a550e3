// Package renderer assembles a resolved prompt spec into the positive
// and negative text handed to the image-generation collaborator.
// Categories render in a fixed sequence, emphasis follows the bracket
// weighting convention, and every pose or camera descriptor is
// normalized to a front-facing equivalent before rendering.
package renderer

import (
	"sort"
	"strings"

	"github.com/modehaus/stylesynth/internal/vocab"
	"github.com/modehaus/stylesynth/models"
)

// Emphasis thresholds for the bracket weighting convention.
const (
	doubleEmphasisAbove = 0.8
	singleEmphasisFrom  = 0.6
)

// Renderer renders prompt specs against a vocabulary's guardrail lists.
type Renderer struct {
	rearViewRewrites map[string]string
	negativeBaseline []string
}

// New builds a renderer from the vocabulary.
func New(v *vocab.Vocabulary) *Renderer {
	return &Renderer{
		rearViewRewrites: v.RearViewRewrites,
		negativeBaseline: v.NegativeBaseline,
	}
}

// Render produces the final prompt text pair for one spec. All prompt
// text is lowercase, overrides included; diffusion prompts are
// case-insensitive and the uniform case keeps the rewrite and
// deduplication passes exact.
func (r *Renderer) Render(spec *models.PromptSpec) models.RenderedPrompt {
	var tokens []string
	for _, cat := range models.CategoryOrder() {
		sel, ok := spec.Selections[cat]
		if !ok || sel.Value == "" {
			continue
		}
		value := r.frontFacing(strings.ToLower(sel.Value))
		if value == "" {
			continue
		}
		tokens = append(tokens, emphasize(value, sel.Weight))
	}

	return models.RenderedPrompt{
		PositiveText: strings.Join(tokens, ", "),
		NegativeText: strings.Join(r.negativeTerms(spec), ", "),
	}
}

// emphasize maps a selection weight to the bracket convention: strong
// weights get double brackets, medium single, the rest render bare.
func emphasize(value string, weight float64) string {
	switch {
	case weight > doubleEmphasisAbove:
		return "((" + value + "))"
	case weight >= singleEmphasisFrom:
		return "(" + value + ")"
	default:
		return value
	}
}

// frontFacing rewrites any rear/back-view descriptor into its
// front-facing equivalent. This is a guardrail against downstream model
// bias and applies unconditionally, overrides included. The input must
// already be lowercased; the rewrite table keys are lowercase.
func (r *Renderer) frontFacing(value string) string {
	for descriptor, replacement := range r.rearViewRewrites {
		if strings.Contains(value, descriptor) {
			value = strings.ReplaceAll(value, descriptor, replacement)
		}
	}
	return value
}

// negativeTerms joins the fixed baseline with request-specific
// exclusions, deduplicated with baseline order preserved.
func (r *Renderer) negativeTerms(spec *models.PromptSpec) []string {
	seen := make(map[string]struct{}, len(r.negativeBaseline)+len(spec.NegativeTerms))
	out := make([]string, 0, len(r.negativeBaseline)+len(spec.NegativeTerms))
	for _, term := range r.negativeBaseline {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	extras := make([]string, 0, len(spec.NegativeTerms))
	for _, term := range spec.NegativeTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		extras = append(extras, term)
	}
	sort.Strings(extras)
	return append(out, extras...)
}
