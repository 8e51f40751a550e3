package models

import "time"

// Category identifies an attribute dimension of a generated garment image.
type Category string

const (
	CategoryStyle        Category = "style"
	CategoryGarment      Category = "garment"
	CategoryColor        Category = "color"
	CategoryFabric       Category = "fabric"
	CategorySilhouette   Category = "silhouette"
	CategoryConstruction Category = "construction"
	CategoryModelPose    Category = "model_pose"
	CategoryAccessories  Category = "accessories"
	CategoryLighting     Category = "lighting"
	CategoryCameraAngle  Category = "camera_angle"
	CategoryFinish       Category = "finish"
)

// SecondaryCategories are the photography dimensions covered by the
// batch diversity guarantee: no two prompts in one batch may share an
// identical (lighting, camera angle, finish) tuple.
func SecondaryCategories() []Category {
	return []Category{CategoryLighting, CategoryCameraAngle, CategoryFinish}
}

// AttributeDistribution is the Beta posterior for one (category, value)
// pair of a single user. Alpha and Beta never drop below 1: the posterior
// can tighten but never degrade past an uninformative prior.
type AttributeDistribution struct {
	Alpha       float64   `json:"alpha" validate:"gte=1"`
	Beta        float64   `json:"beta" validate:"gte=1"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Mean returns the posterior mean reward probability.
func (d AttributeDistribution) Mean() float64 {
	return d.Alpha / (d.Alpha + d.Beta)
}

// UninformativePrior returns the Beta(1,1) prior used for values with no
// observed history.
func UninformativePrior() AttributeDistribution {
	return AttributeDistribution{Alpha: 1, Beta: 1}
}
