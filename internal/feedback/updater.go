// Package feedback turns sparse user feedback (likes, dislikes,
// favorites) into posterior updates, with recency decay and idempotent
// replay handling. Feedback never blocks or fails prompt generation;
// a lost update only delays learning convergence.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/modehaus/stylesynth/internal/bandit"
	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/types"
)

// DefaultDecayRate gives recent feedback more influence without
// discarding history: decay(d) = rate^d for an event d days old.
const DefaultDecayRate = 0.98

// Config holds the updater tunables.
type Config struct {
	DecayRate float64
}

// Updater applies feedback events to the distribution store.
type Updater struct {
	store *bandit.Store
	cfg   Config
}

// NewUpdater builds an updater over the store.
func NewUpdater(store *bandit.Store, cfg Config) *Updater {
	if cfg.DecayRate <= 0 || cfg.DecayRate > 1 {
		cfg.DecayRate = DefaultDecayRate
	}
	return &Updater{store: store, cfg: cfg}
}

// Decay returns the age discount applied to an event's increment.
func (u *Updater) Decay(ageInDays float64) float64 {
	if ageInDays < 0 {
		ageInDays = 0
	}
	return math.Pow(u.cfg.DecayRate, ageInDays)
}

// Apply applies one feedback event. Replaying an already-processed event
// ID is a silent no-op, so the observable state after applying an event
// twice equals applying it once. The store performs the replay check and
// the update atomically; concurrent duplicate deliveries apply at most
// once.
func (u *Updater) Apply(ctx context.Context, event models.FeedbackEvent) error {
	if err := models.ValidateStruct(event); err != nil {
		return fmt.Errorf("invalid feedback event: %w", err)
	}

	decay := u.Decay(event.AgeInDays)
	applied, err := u.store.ApplyEvent(ctx, event, decay)
	if err != nil {
		return fmt.Errorf("apply feedback: %w", err)
	}
	if !applied {
		slog.Debug("dropping replayed feedback event",
			"event", event.EventID,
			"generation", event.GenerationID,
			"code", types.ErrCodeFeedbackReplay)
		return nil
	}

	slog.Debug("feedback applied",
		"event", event.EventID,
		"user", event.UserID,
		"reward", event.Reward,
		"decay", decay,
		"attributes", len(event.RealizedAttributes))
	return nil
}
