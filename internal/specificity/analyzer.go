// Package specificity scores how constrained a free-text generation
// request is and derives the creativity temperature that modulates
// attribute sampling. Analysis is deterministic and pure: identical
// input always yields identical output, and malformed text degrades to a
// neutral default instead of erroring.
package specificity

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/modehaus/stylesynth/internal/vocab"
	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/types"
)

// Defaults for the creativity temperature bounds.
const (
	DefaultMinCreativity = 0.3
	DefaultMaxCreativity = 1.2
)

// NeutralScore is the fallback specificity for empty or malformed text.
const NeutralScore = 0.5

// Config bounds the creativity temperature map.
type Config struct {
	MinCreativity float64
	MaxCreativity float64
}

func (c *Config) applyDefaults() {
	if c.MinCreativity <= 0 {
		c.MinCreativity = DefaultMinCreativity
	}
	if c.MaxCreativity <= c.MinCreativity {
		c.MaxCreativity = DefaultMaxCreativity
	}
}

// Factor is one additive contribution to the specificity score.
type Factor struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
	Detail       string  `json:"detail,omitempty"`
}

// Result is the analyzer output for one command.
type Result struct {
	Score          float64            `json:"specificityScore"`
	CreativityTemp float64            `json:"creativityTemp"`
	Mode           models.CommandMode `json:"mode"`
	Reasoning      string             `json:"reasoning"`
	Factors        []Factor           `json:"factors,omitempty"`
}

// Analyzer scores request text against the vocabulary keyword sets.
type Analyzer struct {
	keywords vocab.Keywords
	cfg      Config
}

// NewAnalyzer builds an analyzer over the given vocabulary's keyword
// sets.
func NewAnalyzer(v *vocab.Vocabulary, cfg Config) *Analyzer {
	cfg.applyDefaults()
	return &Analyzer{keywords: v.Keywords, cfg: cfg}
}

// Analyze maps a command's text and extracted entities to a specificity
// score in [0,1], the inversely derived creativity temperature, and the
// command mode.
func (a *Analyzer) Analyze(text string, entities models.Entities) Result {
	entities.Normalize()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !utf8.ValidString(trimmed) {
		slog.Debug("unparseable command text, using neutral specificity",
			"code", types.ErrCodeParse, "valid_utf8", utf8.ValidString(trimmed))
		return a.finish(NeutralScore, nil,
			"unparseable command text; using neutral specificity default")
	}

	var factors []Factor
	add := func(name string, contribution float64, detail string) {
		factors = append(factors, Factor{Name: name, Contribution: contribution, Detail: detail})
	}

	// Descriptor count: each extracted descriptor tightens the request,
	// capped so long lists cannot dominate the score alone.
	if n := entities.DescriptorCount(); n > 0 {
		c := 0.2 * float64(n)
		if c > 0.6 {
			c = 0.6
		}
		add("descriptor_count", c, fmt.Sprintf("%d extracted descriptors", n))
	}

	// Quantity: batch requests are inherently less specific per item.
	switch {
	case entities.Count <= 1:
		add("quantity", 0.3, "singular request")
	case entities.Count <= 5:
		add("quantity", 0.2, fmt.Sprintf("small batch of %d", entities.Count))
	case entities.Count <= 10:
		add("quantity", 0.1, fmt.Sprintf("medium batch of %d", entities.Count))
	}

	// Vague and precise language are mutually exclusive in scoring: when
	// both appear, vague dominates.
	switch {
	case vocab.ContainsAny(trimmed, a.keywords.Vague):
		add("vague_language", -0.3, "vague keyword match")
	case vocab.ContainsAny(trimmed, a.keywords.Precise):
		add("precise_language", 0.3, "precise keyword match")
	}

	if a.matchesVocabulary(trimmed, entities.Fabrics, a.keywords.TechnicalFabric) {
		add("technical_fabric", 0.15, "technical fabric vocabulary")
	}
	if a.matchesVocabulary(trimmed, append(entities.Construction, entities.Styles...), a.keywords.Construction) {
		add("construction_vocabulary", 0.15, "construction or silhouette vocabulary")
	}

	if layeredModifierGroups(entities) >= 3 {
		add("layered_modifiers", 0.1, "three or more descriptor groups present")
	}

	score := 0.0
	for _, f := range factors {
		score += f.Contribution
	}
	score = clamp01(score)

	return a.finish(score, factors, reasoning(factors))
}

func (a *Analyzer) finish(score float64, factors []Factor, reasoning string) Result {
	mode := models.ModeExploratory
	if score > 0.5 {
		mode = models.ModeSpecific
	}
	return Result{
		Score:          score,
		CreativityTemp: a.cfg.MaxCreativity - score*(a.cfg.MaxCreativity-a.cfg.MinCreativity),
		Mode:           mode,
		Reasoning:      reasoning,
		Factors:        factors,
	}
}

// matchesVocabulary checks the raw text and the extracted entity terms
// against a keyword set.
func (a *Analyzer) matchesVocabulary(text string, terms []string, keywords []string) bool {
	if vocab.ContainsAny(text, keywords) {
		return true
	}
	for _, t := range terms {
		if vocab.ContainsAny(t, keywords) {
			return true
		}
	}
	return false
}

func layeredModifierGroups(e models.Entities) int {
	groups := 0
	for _, g := range [][]string{e.Colors, e.Styles, e.Fabrics, e.Modifiers} {
		if len(g) > 0 {
			groups++
		}
	}
	return groups
}

func reasoning(factors []Factor) string {
	if len(factors) == 0 {
		return "no specificity signals detected"
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%s %+.2f", f.Name, f.Contribution)
	}
	return strings.Join(parts, ", ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
