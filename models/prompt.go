package models

// SelectionSource records how an attribute value was chosen.
type SelectionSource string

const (
	SourceSampled  SelectionSource = "sampled"
	SourceOverride SelectionSource = "override"
)

// OverrideWeight is the fixed emphasis weight applied to values the user
// explicitly requested.
const OverrideWeight = 2.0

// Selection is one chosen attribute value with its emphasis weight.
type Selection struct {
	Value  string          `json:"value" validate:"required"`
	Weight float64         `json:"weight" validate:"gte=0"`
	Source SelectionSource `json:"source" validate:"required,oneof=sampled override"`
}

// PromptSpec is the fully resolved attribute set for one generated image.
// Ephemeral: one per image per request.
type PromptSpec struct {
	ID            string                 `json:"id" validate:"required,uuid4"`
	GenerationID  string                 `json:"generationId" validate:"required,uuid4"`
	BatchIndex    int                    `json:"batchIndex" validate:"gte=0"`
	VariationSeed int                    `json:"variationSeed"`
	Selections    map[Category]Selection `json:"selections"`
	NegativeTerms []string               `json:"negativeTerms,omitempty"`
}

// SecondaryTuple returns the (lighting, camera angle, finish) combination
// used by the batch diversity check.
func (s *PromptSpec) SecondaryTuple() [3]string {
	var tuple [3]string
	for i, cat := range SecondaryCategories() {
		tuple[i] = s.Selections[cat].Value
	}
	return tuple
}

// OverriddenCategories lists the categories whose value came from an
// explicit user request, in stable order.
func (s *PromptSpec) OverriddenCategories() []Category {
	var out []Category
	for _, cat := range CategoryOrder() {
		if sel, ok := s.Selections[cat]; ok && sel.Source == SourceOverride {
			out = append(out, cat)
		}
	}
	return out
}

// CategoryOrder is the fixed rendering sequence. Style leads, garment and
// color anchor the subject, photography attributes close the prompt.
func CategoryOrder() []Category {
	return []Category{
		CategoryStyle,
		CategoryGarment,
		CategoryColor,
		CategoryFabric,
		CategorySilhouette,
		CategoryConstruction,
		CategoryModelPose,
		CategoryAccessories,
		CategoryLighting,
		CategoryCameraAngle,
		CategoryFinish,
	}
}

// RenderedPrompt is the final text handed to the image-generation
// collaborator.
type RenderedPrompt struct {
	PositiveText string `json:"positiveText"`
	NegativeText string `json:"negativeText"`
}
