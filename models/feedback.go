package models

// FeedbackEvent is one user-feedback observation tied back to a prior
// generation. Events are append-only and consumed at most once: replaying
// an event ID is a silent no-op.
type FeedbackEvent struct {
	EventID            string              `json:"eventId" validate:"required"`
	GenerationID       string              `json:"generationId" validate:"required"`
	UserID             string              `json:"userId" validate:"required"`
	RealizedAttributes map[Category]string `json:"realizedAttributes" validate:"required,min=1"`
	Reward             float64             `json:"reward" validate:"gte=0,lte=1"`
	AgeInDays          float64             `json:"ageInDays" validate:"gte=0"`
}

// Positive reports whether the event reinforces the realized attributes
// (alpha update) rather than penalizing them (beta update).
func (e FeedbackEvent) Positive() bool {
	return e.Reward >= 0.5
}
