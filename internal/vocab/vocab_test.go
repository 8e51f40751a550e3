package vocab

import (
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/modehaus/stylesynth/models"
)

func TestDefaultCoversEveryCategory(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	for _, cat := range models.CategoryOrder() {
		if len(v.Categories[cat]) == 0 {
			t.Errorf("default vocabulary has no values for %s", cat)
		}
	}
	if len(v.Keywords.Vague) == 0 || len(v.Keywords.Precise) == 0 {
		t.Error("default vocabulary missing keyword sets")
	}
	if len(v.RearViewRewrites) == 0 {
		t.Error("default vocabulary missing rear-view rewrites")
	}
	if len(v.NegativeBaseline) == 0 {
		t.Error("default vocabulary missing negative baseline")
	}
}

func TestCandidatesSortedCopy(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	got := v.Candidates(models.CategoryColor)
	if !sort.StringsAreSorted(got) {
		t.Errorf("candidates must be sorted, got %v", got)
	}

	got[0] = "mutated"
	again := v.Candidates(models.CategoryColor)
	if again[0] == "mutated" {
		t.Error("Candidates must return a copy, not the backing slice")
	}
}

func TestLoadOverrideReplacesLists(t *testing.T) {
	fs := afero.NewMemMapFs()
	override := `
categories:
  color:
    - cobalt
    - vermilion
keywords:
  vague:
    - dealer's choice
`
	if err := afero.WriteFile(fs, "/vocab.yaml", []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	v, err := Load(fs, "/vocab.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	colors := v.Candidates(models.CategoryColor)
	if len(colors) != 2 || colors[0] != "cobalt" || colors[1] != "vermilion" {
		t.Errorf("override must replace the color list wholesale, got %v", colors)
	}
	if len(v.Keywords.Vague) != 1 || v.Keywords.Vague[0] != "dealer's choice" {
		t.Errorf("override must replace the vague keyword set, got %v", v.Keywords.Vague)
	}

	// Untouched sections keep their defaults.
	if len(v.Categories[models.CategoryFabric]) == 0 {
		t.Error("fabric defaults must survive a partial override")
	}
	if len(v.NegativeBaseline) == 0 {
		t.Error("negative baseline must survive a partial override")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	v, err := Load(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(v.Categories[models.CategoryStyle]) == 0 {
		t.Error("empty path must return the embedded defaults")
	}
}

func TestLoadMissingOverrideFails(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/nope.yaml"); err == nil {
		t.Error("missing override file must error")
	}
}

func TestContainsAny(t *testing.T) {
	phrases := []string{"crepe de chine", "boucle"}
	if !ContainsAny("A gown in Crepe De Chine", phrases) {
		t.Error("match must be case-insensitive")
	}
	if ContainsAny("plain cotton shirt", phrases) {
		t.Error("unexpected match")
	}
	if ContainsAny("anything", nil) {
		t.Error("empty phrase set must never match")
	}
}

func TestSecondaryOptionCount(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	want := len(v.Categories[models.CategoryLighting]) *
		len(v.Categories[models.CategoryCameraAngle]) *
		len(v.Categories[models.CategoryFinish])
	if got := v.SecondaryOptionCount(); got != want {
		t.Errorf("SecondaryOptionCount = %d, want %d", got, want)
	}
}
