// Package bandit implements the Thompson-sampling core of the prompt
// synthesis engine: per-user Beta posteriors over attribute values, a
// seedable sampler, and the selector that balances exploitation of
// learned preferences against exploration.
package bandit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modehaus/stylesynth/models"
	"github.com/modehaus/stylesynth/store"
)

// Store is the per-user arena of attribute distributions. It is the only
// shared mutable state in the engine: reads take a consistent snapshot,
// and every write holds a single lock so concurrent feedback arrivals
// can never lose increments or double-apply a replayed event.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*userState
	events map[string]struct{}
	repo   store.DistributionRepository
	now    func() time.Time
}

type userState struct {
	profile    models.StyleProfile
	hasProfile bool
	dists      map[models.Category]map[string]models.AttributeDistribution

	// feedback counters for profile stats
	positive float64
	negative float64
}

// Snapshot is an immutable copy of one user's posteriors taken at
// selection start. Staleness against concurrent feedback writers is
// acceptable; sampling does not need linearizability.
type Snapshot map[models.Category]map[string]models.AttributeDistribution

// Distribution returns the posterior for a value, falling back to the
// uninformative Beta(1,1) prior when the value has no history.
func (s Snapshot) Distribution(cat models.Category, value string) models.AttributeDistribution {
	if values, ok := s[cat]; ok {
		if d, ok := values[value]; ok {
			return d
		}
	}
	return models.UninformativePrior()
}

// Has reports whether a posterior exists for the value.
func (s Snapshot) Has(cat models.Category, value string) bool {
	_, ok := s[cat][value]
	return ok
}

// Stats summarizes a user's accumulated feedback.
type Stats struct {
	PositiveFeedback float64 `json:"positiveFeedback"`
	NegativeFeedback float64 `json:"negativeFeedback"`
	SelectionRate    float64 `json:"selectionRate"`
}

// NewStore creates an arena backed by an optional persistence
// repository. A nil repository keeps everything in memory.
func NewStore(repo store.DistributionRepository) *Store {
	return &Store{
		users:  make(map[string]*userState),
		events: make(map[string]struct{}),
		repo:   repo,
		now:    time.Now,
	}
}

func (s *Store) user(userID string) *userState {
	u, ok := s.users[userID]
	if !ok {
		u = &userState{dists: make(map[models.Category]map[string]models.AttributeDistribution)}
		s.users[userID] = u
	}
	return u
}

// SeedFromProfile initializes a user's posteriors from ingested style
// profile observations. Confident observations seed committal priors
// (alpha grows with count); low-confidence entries seed wider priors
// whose mean stays near 0.5. Re-seeding replaces earlier seeds but keeps
// nothing below the uninformative floor.
func (s *Store) SeedFromProfile(ctx context.Context, profile models.StyleProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(profile.UserID)
	u.profile = profile
	u.hasProfile = true

	now := s.now()
	for cat, values := range profile.Categories {
		for value, obs := range values {
			if obs.Count <= 0 {
				continue
			}
			dist := seedPrior(obs)
			dist.LastUpdated = now
			s.setDistLocked(u, cat, value, dist)
			if err := s.persistLocked(ctx, profile.UserID, cat, value, dist); err != nil {
				return err
			}
		}
	}

	slog.Debug("seeded distributions from profile",
		"user", profile.UserID,
		"version", profile.Version,
		"categories", len(profile.Categories))
	return nil
}

func seedPrior(obs models.Observation) models.AttributeDistribution {
	count := float64(obs.Count)
	if obs.Confidence < models.LowConfidenceThreshold {
		// Wider prior: same pseudo-count mass split evenly keeps the
		// mean uncommitted while the evidence still counts.
		return models.AttributeDistribution{Alpha: 1 + count/2, Beta: 1 + count/2}
	}
	return models.AttributeDistribution{Alpha: 1 + count, Beta: 1}
}

// Hydrate loads a user's persisted posteriors from the repository.
func (s *Store) Hydrate(ctx context.Context, userID string) error {
	if s.repo == nil {
		return nil
	}
	rows, err := s.repo.LoadUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("hydrate user %s: %w", userID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	for _, row := range rows {
		s.setDistLocked(u, row.Category, row.Value, models.AttributeDistribution{
			Alpha:       row.Alpha,
			Beta:        row.Beta,
			LastUpdated: row.LastUpdated,
		})
	}
	return nil
}

// Profile returns the style profile a user was seeded from.
func (s *Store) Profile(userID string) (models.StyleProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || !u.hasProfile {
		return models.StyleProfile{}, false
	}
	return u.profile, true
}

// HasHistory reports whether any posterior exists for the user.
func (s *Store) HasHistory(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	for _, values := range u.dists {
		if len(values) > 0 {
			return true
		}
	}
	return false
}

// Snapshot copies a user's posteriors for lock-free sampling.
func (s *Store) Snapshot(userID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot)
	u, ok := s.users[userID]
	if !ok {
		return snap
	}
	for cat, values := range u.dists {
		copied := make(map[string]models.AttributeDistribution, len(values))
		for value, dist := range values {
			copied[value] = dist
		}
		snap[cat] = copied
	}
	return snap
}

// ApplyFeedback applies one decayed reward observation to every realized
// attribute. Positive feedback grows alpha, negative grows beta; both
// stay at or above the uninformative floor. The write path, including
// the repository flush, runs inside the critical section so persisted
// rows never regress behind the in-memory state.
func (s *Store) ApplyFeedback(ctx context.Context, userID string, realized map[models.Category]string, positive bool, decay float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, userID, realized, positive, decay)
}

// ApplyEvent applies one feedback event exactly once. The replay check,
// the posterior mutations and the processed mark all happen under one
// lock acquisition, so concurrent deliveries of the same event ID leave
// at most one increment behind. The repository mark lands in the same
// persistence step as the row upserts. Returns false for a replay.
func (s *Store) ApplyEvent(ctx context.Context, event models.FeedbackEvent, decay float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.EventID]; ok {
		return false, nil
	}
	if s.repo != nil {
		processed, err := s.repo.IsEventProcessed(ctx, event.EventID)
		if err != nil {
			return false, fmt.Errorf("check processed event: %w", err)
		}
		if processed {
			s.events[event.EventID] = struct{}{}
			return false, nil
		}
	}

	if err := s.applyLocked(ctx, event.UserID, event.RealizedAttributes, event.Positive(), decay); err != nil {
		return false, err
	}

	if s.repo != nil {
		if err := s.repo.MarkEventProcessed(ctx, event.EventID); err != nil {
			return false, fmt.Errorf("persist processed event: %w", err)
		}
	}
	s.events[event.EventID] = struct{}{}
	return true, nil
}

func (s *Store) applyLocked(ctx context.Context, userID string, realized map[models.Category]string, positive bool, decay float64) error {
	if decay <= 0 {
		return nil
	}

	u := s.user(userID)
	now := s.now()
	for cat, value := range realized {
		dist, ok := u.dists[cat][value]
		if !ok {
			dist = models.UninformativePrior()
		}
		if positive {
			dist.Alpha += decay
		} else {
			dist.Beta += decay
		}
		dist.LastUpdated = now
		s.setDistLocked(u, cat, value, dist)
		if err := s.persistLocked(ctx, userID, cat, value, dist); err != nil {
			return err
		}
	}

	if positive {
		u.positive++
	} else {
		u.negative++
	}
	return nil
}

// MarkEventProcessed records a feedback event ID as consumed.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID string) error {
	s.mu.Lock()
	s.events[eventID] = struct{}{}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.MarkEventProcessed(ctx, eventID); err != nil {
			return fmt.Errorf("persist processed event: %w", err)
		}
	}
	return nil
}

// IsEventProcessed reports whether a feedback event was already applied.
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	_, ok := s.events[eventID]
	s.mu.RUnlock()
	if ok {
		return true, nil
	}
	if s.repo != nil {
		return s.repo.IsEventProcessed(ctx, eventID)
	}
	return false, nil
}

// Stats returns the user's accumulated feedback counters.
func (s *Store) Stats(userID string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return Stats{}
	}
	stats := Stats{PositiveFeedback: u.positive, NegativeFeedback: u.negative}
	if total := u.positive + u.negative; total > 0 {
		stats.SelectionRate = u.positive / total
	}
	return stats
}

func (s *Store) setDistLocked(u *userState, cat models.Category, value string, dist models.AttributeDistribution) {
	// Invariant: alpha, beta >= 1.
	if dist.Alpha < 1 {
		dist.Alpha = 1
	}
	if dist.Beta < 1 {
		dist.Beta = 1
	}
	if u.dists[cat] == nil {
		u.dists[cat] = make(map[string]models.AttributeDistribution)
	}
	u.dists[cat][value] = dist
}

func (s *Store) persistLocked(ctx context.Context, userID string, cat models.Category, value string, dist models.AttributeDistribution) error {
	if s.repo == nil {
		return nil
	}
	err := s.repo.UpsertRow(ctx, store.DistributionRow{
		UserID:      userID,
		Category:    cat,
		Value:       value,
		Alpha:       dist.Alpha,
		Beta:        dist.Beta,
		LastUpdated: dist.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("persist distribution %s/%s/%s: %w", userID, cat, value, err)
	}
	return nil
}
