// Package branddna derives a ranked, weighted summary of a user's
// dominant historical style attributes from their style profile. The
// signature biases attribute sampling toward the user's established
// aesthetic. Extraction is pure aggregation: recomputed on demand, never
// persisted separately from the profile.
package branddna

import (
	"sort"
	"strings"

	"github.com/modehaus/stylesynth/models"
)

// DefaultTopK is the default signature size per category.
const DefaultTopK = 4

// Trait is one signature value with its normalized frequency weight.
type Trait struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// DNA is the extracted brand signature.
type DNA struct {
	PrimaryAesthetic      string  `json:"primaryAesthetic"`
	SecondaryAesthetics   []Trait `json:"secondaryAesthetics,omitempty"`
	SignatureColors       []Trait `json:"signatureColors,omitempty"`
	SignatureFabrics      []Trait `json:"signatureFabrics,omitempty"`
	SignatureConstruction []Trait `json:"signatureConstruction,omitempty"`
	PrimaryGarments       []Trait `json:"primaryGarments,omitempty"`

	// weights indexes every signature trait for selector lookups,
	// including categories not surfaced as named fields.
	weights map[models.Category]map[string]float64
}

// SignatureWeight returns the normalized frequency for a value in the
// signature set, or 0 when the value is not part of the signature.
func (d *DNA) SignatureWeight(cat models.Category, value string) float64 {
	if d == nil || d.weights == nil {
		return 0
	}
	return d.weights[cat][value]
}

// Empty reports whether the signature carries no traits at all, as for a
// first-time user without an analyzed portfolio.
func (d *DNA) Empty() bool {
	if d == nil {
		return true
	}
	for _, values := range d.weights {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Extract builds the brand DNA from a style profile. Per category, values
// rank by observation count with lexical tie-break; the top K values are
// retained with weight count/categoryTotal.
func Extract(profile models.StyleProfile, topK int) *DNA {
	if topK <= 0 {
		topK = DefaultTopK
	}

	dna := &DNA{weights: make(map[models.Category]map[string]float64)}
	for cat := range profile.Categories {
		traits := rankCategory(profile, cat, topK)
		if len(traits) == 0 {
			continue
		}
		byValue := make(map[string]float64, len(traits))
		for _, t := range traits {
			byValue[t.Value] = t.Weight
		}
		dna.weights[cat] = byValue

		switch cat {
		case models.CategoryStyle:
			dna.PrimaryAesthetic = traits[0].Value
			if len(traits) > 1 {
				dna.SecondaryAesthetics = traits[1:]
			}
		case models.CategoryColor:
			dna.SignatureColors = traits
		case models.CategoryFabric:
			dna.SignatureFabrics = traits
		case models.CategoryConstruction:
			dna.SignatureConstruction = traits
		case models.CategoryGarment:
			dna.PrimaryGarments = traits
		}
	}

	if dna.PrimaryAesthetic == "" {
		dna.PrimaryAesthetic = fallbackAesthetic(dna)
	}
	return dna
}

func rankCategory(profile models.StyleProfile, cat models.Category, topK int) []Trait {
	values := profile.Categories[cat]
	total := profile.CategoryTotal(cat)
	if total == 0 {
		return nil
	}

	ranked := make([]Trait, 0, len(values))
	counts := make(map[string]int, len(values))
	for value, obs := range values {
		if obs.Count <= 0 {
			continue
		}
		counts[value] = obs.Count
		ranked = append(ranked, Trait{Value: value, Weight: float64(obs.Count) / float64(total)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i].Value], counts[ranked[j].Value]
		if ci != cj {
			return ci > cj
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// fallbackAesthetic names the signature when the profile's aesthetic
// category is sparse, using the dominant silhouette and fabric the way
// the portfolio profiler labels its clusters.
func fallbackAesthetic(dna *DNA) string {
	silhouette := topValue(dna.weights[models.CategorySilhouette])
	fabric := topValue(dna.weights[models.CategoryFabric])

	switch {
	case silhouette == "" && fabric == "":
		return "urban contemporary"
	case strings.Contains(silhouette, "structured") || strings.Contains(silhouette, "tailored"):
		return "minimalist tailoring"
	case strings.Contains(silhouette, "draped") || strings.Contains(silhouette, "a-line") ||
		strings.Contains(fabric, "silk") || strings.Contains(fabric, "charmeuse"):
		return "fluid evening"
	case strings.Contains(silhouette, "asymmetric"):
		return "experimental edge"
	case strings.Contains(fabric, "jersey") || strings.Contains(fabric, "knit"):
		return "sporty chic"
	case strings.Contains(fabric, "chiffon") || strings.Contains(fabric, "lace"):
		return "romantic bohemian"
	default:
		return "classic refined"
	}
}

func topValue(weights map[string]float64) string {
	best := ""
	bestWeight := 0.0
	for value, w := range weights {
		if w > bestWeight || (w == bestWeight && (best == "" || value < best)) {
			best = value
			bestWeight = w
		}
	}
	return best
}
