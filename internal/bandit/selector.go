package bandit

import (
	"log/slog"
	"sort"

	"github.com/modehaus/stylesynth/internal/branddna"
	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/types"
)

// Config holds the selector tunables.
type Config struct {
	// Epsilon is the base uniform-exploration probability. It grows
	// with creativity temperature so vague requests explore more; pure
	// Thompson sampling can collapse onto a single mode while sample
	// counts are small.
	Epsilon       float64
	MinCreativity float64
	MaxCreativity float64
}

// Options are per-request selection switches.
type Options struct {
	// RespectUserIntent makes explicitly requested values bypass
	// sampling entirely.
	RespectUserIntent bool
}

// Candidate is one scored candidate value: the raw posterior draw plus
// the brand-DNA bias.
type Candidate struct {
	Value string
	Draw  float64
	Bias  float64
	Score float64
}

// Choice is the selection result for one category.
type Choice struct {
	Category models.Category
	Value    string
	Weight   float64
	Source   models.SelectionSource
	// LowConfidence marks selections made with no posterior history at
	// all (uniform-prior fallback).
	LowConfidence bool
	// Ranked lists all candidates in descending score order; the batch
	// diversity pass walks it for next-least-probable swaps.
	Ranked []Candidate
}

// Selector chooses attribute values by Thompson sampling biased toward
// the user's brand DNA.
type Selector struct {
	sampler Sampler
	cfg     Config
}

// NewSelector builds a selector over the given pseudorandom source.
func NewSelector(sampler Sampler, cfg Config) *Selector {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 0.1
	}
	if cfg.MaxCreativity <= 0 {
		cfg.MaxCreativity = 1.2
	}
	return &Selector{sampler: sampler, cfg: cfg}
}

// BrandDNAStrength maps specificity to how hard selection leans on the
// brand signature: vague requests (low specificity) stay close to the
// user's established aesthetic, precise requests mostly follow the
// request itself.
func BrandDNAStrength(specificityScore float64) float64 {
	strength := 0.9 - 0.6*specificityScore
	if strength < 0.3 {
		return 0.3
	}
	if strength > 0.9 {
		return 0.9
	}
	return strength
}

// effectiveEpsilon scales the base exploration probability with the
// command's creativity temperature, clamped to [epsilon, 0.35].
func (s *Selector) effectiveEpsilon(creativityTemp float64) float64 {
	eps := s.cfg.Epsilon * (0.5 + creativityTemp/s.cfg.MaxCreativity)
	if eps < s.cfg.Epsilon {
		eps = s.cfg.Epsilon
	}
	if eps > 0.35 {
		eps = 0.35
	}
	return eps
}

// Select chooses one value for a category. Explicit user values win
// outright when RespectUserIntent is set; otherwise every candidate gets a
// Beta draw biased by the brand signature, with an epsilon-greedy
// uniform layer on top.
func (s *Selector) Select(cat models.Category, candidates []string, snap Snapshot, dna *branddna.DNA, cmd *models.Command, opts Options) Choice {
	if opts.RespectUserIntent {
		if value, ok := cmd.ExplicitValue(cat); ok {
			return Choice{
				Category: cat,
				Value:    value,
				Weight:   models.OverrideWeight,
				Source:   models.SourceOverride,
			}
		}
	}

	if len(candidates) == 0 {
		return Choice{Category: cat}
	}

	strength := BrandDNAStrength(cmd.SpecificityScore)

	if len(candidates) == 1 {
		// Single-candidate category: no sampling, posterior mean plus
		// bias still makes a meaningful emphasis weight.
		value := candidates[0]
		dist := snap.Distribution(cat, value)
		bias := strength * dna.SignatureWeight(cat, value)
		return Choice{
			Category: cat,
			Value:    value,
			Weight:   dist.Mean() + bias,
			Source:   models.SourceSampled,
			Ranked:   []Candidate{{Value: value, Score: dist.Mean() + bias}},
		}
	}

	ranked := make([]Candidate, 0, len(candidates))
	hasHistory := false
	for _, value := range candidates {
		dist := snap.Distribution(cat, value)
		if snap.Has(cat, value) {
			hasHistory = true
		}
		draw := s.sampler.Beta(dist.Alpha, dist.Beta)
		bias := strength * dna.SignatureWeight(cat, value)
		ranked = append(ranked, Candidate{
			Value: value,
			Draw:  draw,
			Bias:  bias,
			Score: draw + bias,
		})
	}
	// Descending score; degenerate ties resolve lexically so repeated
	// runs with a pinned sampler stay deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Value < ranked[j].Value
	})

	chosen := ranked[0]
	if allTied(ranked) {
		slog.Warn("sampling degeneracy: all biased draws tied, using lexical tie-break",
			"category", cat,
			"candidates", len(ranked),
			"code", types.ErrCodeSamplingDegeneracy)
	}

	if s.sampler.Float64() < s.effectiveEpsilon(cmd.CreativityTemp) {
		chosen = ranked[s.sampler.Intn(len(ranked))]
		slog.Debug("epsilon exploration",
			"category", cat, "value", chosen.Value, "creativityTemp", cmd.CreativityTemp)
	}

	lowConfidence := !hasHistory && dna.Empty()
	if lowConfidence {
		slog.Debug("low-confidence selection from uniform prior",
			"category", cat, "value", chosen.Value)
	}

	return Choice{
		Category:      cat,
		Value:         chosen.Value,
		Weight:        chosen.Score,
		Source:        models.SourceSampled,
		LowConfidence: lowConfidence,
		Ranked:        ranked,
	}
}

func allTied(ranked []Candidate) bool {
	for _, c := range ranked[1:] {
		if c.Score != ranked[0].Score {
			return false
		}
	}
	return true
}
