// Package vocab provides the attribute vocabulary the engine samples
// from: candidate values per category, the keyword sets used by the
// specificity analyzer, and the rendering guardrail lists. A default
// vocabulary ships embedded; deployments can merge a YAML override file
// over it.
package vocab

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/modehaus/stylesynth/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Keywords are the phrase sets consulted by the specificity analyzer.
type Keywords struct {
	Vague           []string `yaml:"vague"`
	Precise         []string `yaml:"precise"`
	TechnicalFabric []string `yaml:"technical_fabric"`
	Construction    []string `yaml:"construction"`
}

// Vocabulary holds candidate values per category plus keyword and
// guardrail lists.
type Vocabulary struct {
	Categories       map[models.Category][]string `yaml:"categories"`
	Keywords         Keywords                     `yaml:"keywords"`
	RearViewRewrites map[string]string            `yaml:"rear_view_rewrites"`
	NegativeBaseline []string                     `yaml:"negative_baseline"`
}

// Default returns the embedded vocabulary.
func Default() (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(defaultsYAML, &v); err != nil {
		return nil, fmt.Errorf("parse embedded vocabulary: %w", err)
	}
	return &v, nil
}

// Load returns the default vocabulary with the override file at path
// merged over it. An empty path returns the defaults unchanged. Override
// lists replace the matching default list wholesale; merging at the item
// level would make removals impossible.
func Load(fsys afero.Fs, path string) (*Vocabulary, error) {
	v, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return v, nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary override %s: %w", path, err)
	}
	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse vocabulary override %s: %w", path, err)
	}

	for cat, values := range override.Categories {
		v.Categories[cat] = values
	}
	if len(override.Keywords.Vague) > 0 {
		v.Keywords.Vague = override.Keywords.Vague
	}
	if len(override.Keywords.Precise) > 0 {
		v.Keywords.Precise = override.Keywords.Precise
	}
	if len(override.Keywords.TechnicalFabric) > 0 {
		v.Keywords.TechnicalFabric = override.Keywords.TechnicalFabric
	}
	if len(override.Keywords.Construction) > 0 {
		v.Keywords.Construction = override.Keywords.Construction
	}
	if len(override.RearViewRewrites) > 0 {
		v.RearViewRewrites = override.RearViewRewrites
	}
	if len(override.NegativeBaseline) > 0 {
		v.NegativeBaseline = override.NegativeBaseline
	}
	return v, nil
}

// Candidates returns the candidate values for a category, sorted for
// deterministic iteration.
func (v *Vocabulary) Candidates(cat models.Category) []string {
	values := v.Categories[cat]
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

// SecondaryOptionCount returns the size of the enumerated option space
// for the diversity-guaranteed photography tuple.
func (v *Vocabulary) SecondaryOptionCount() int {
	smallest := 0
	total := 1
	for _, cat := range models.SecondaryCategories() {
		n := len(v.Categories[cat])
		if n == 0 {
			return 0
		}
		total *= n
		if smallest == 0 || n < smallest {
			smallest = n
		}
	}
	return total
}

// ContainsAny reports whether text contains any of the given phrases,
// case-insensitively. Used for keyword-set scoring.
func ContainsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
