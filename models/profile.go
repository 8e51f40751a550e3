package models

import "time"

// Observation is one aggregated attribute observation from the portfolio
// ingestion pipeline: how often a value was seen and how confident the
// vision model was about it.
type Observation struct {
	Count      int     `json:"count" validate:"gte=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// LowConfidenceThreshold marks ingestion observations that should seed
// wider, less committal priors.
const LowConfidenceThreshold = 0.5

// StyleProfile is the per-user attribute histogram produced by portfolio
// analysis. It is owned by the ingestion collaborator; this engine only
// reads it (to seed posteriors and extract brand DNA) and never mutates
// it in place.
type StyleProfile struct {
	UserID         string                              `json:"userId" validate:"required"`
	Version        int                                 `json:"version" validate:"gte=1"`
	ImagesAnalyzed int                                 `json:"imagesAnalyzed" validate:"gte=0"`
	Categories     map[Category]map[string]Observation `json:"categories"`
	CreatedAt      time.Time                           `json:"createdAt"`
	UpdatedAt      time.Time                           `json:"updatedAt"`
}

// IsEmpty reports whether the profile carries no usable observations,
// e.g. for a first-time user whose portfolio has not been analyzed yet.
func (p StyleProfile) IsEmpty() bool {
	for _, values := range p.Categories {
		for _, obs := range values {
			if obs.Count > 0 {
				return false
			}
		}
	}
	return true
}

// CategoryTotal returns the summed observation count for one category.
func (p StyleProfile) CategoryTotal(cat Category) int {
	total := 0
	for _, obs := range p.Categories[cat] {
		total += obs.Count
	}
	return total
}
