package models

import "testing"

func TestSecondaryTuple(t *testing.T) {
	spec := &PromptSpec{Selections: map[Category]Selection{
		CategoryLighting:    {Value: "rim lighting"},
		CategoryCameraAngle: {Value: "three-quarter view"},
		CategoryFinish:      {Value: "matte editorial finish"},
		CategoryColor:       {Value: "black"},
	}}

	want := [3]string{"rim lighting", "three-quarter view", "matte editorial finish"}
	if got := spec.SecondaryTuple(); got != want {
		t.Errorf("SecondaryTuple = %v, want %v", got, want)
	}
}

func TestOverriddenCategoriesStableOrder(t *testing.T) {
	spec := &PromptSpec{Selections: map[Category]Selection{
		CategoryFabric: {Value: "silk", Source: SourceOverride},
		CategoryStyle:  {Value: "fluid evening", Source: SourceOverride},
		CategoryColor:  {Value: "ivory", Source: SourceSampled},
	}}

	got := spec.OverriddenCategories()
	if len(got) != 2 || got[0] != CategoryStyle || got[1] != CategoryFabric {
		t.Errorf("expected [style fabric], got %v", got)
	}
}

func TestCategoryOrderCoversAllCategories(t *testing.T) {
	order := CategoryOrder()
	if order[0] != CategoryStyle {
		t.Errorf("style must lead the prompt, got %s", order[0])
	}
	if order[len(order)-1] != CategoryFinish {
		t.Errorf("finish must close the prompt, got %s", order[len(order)-1])
	}

	seen := make(map[Category]bool, len(order))
	for _, cat := range order {
		if seen[cat] {
			t.Errorf("duplicate category %s in order", cat)
		}
		seen[cat] = true
	}
	for _, cat := range SecondaryCategories() {
		if !seen[cat] {
			t.Errorf("secondary category %s missing from render order", cat)
		}
	}
}

func TestAttributeDistributionMean(t *testing.T) {
	d := AttributeDistribution{Alpha: 3, Beta: 1}
	if got := d.Mean(); got != 0.75 {
		t.Errorf("Mean = %v, want 0.75", got)
	}
	if got := UninformativePrior().Mean(); got != 0.5 {
		t.Errorf("uninformative prior mean = %v, want 0.5", got)
	}
}
