// Package store provides persistence backends for attribute
// distributions and processed feedback events. The engine itself works
// against the DistributionRepository interface and remains fully
// functional with a nil repository (in-memory only).
package store

import (
	"context"
	"time"

	"github.com/modehaus/stylesynth/models"
)

// DistributionRow is one persisted posterior row.
type DistributionRow struct {
	UserID      string
	Category    models.Category
	Value       string
	Alpha       float64
	Beta        float64
	LastUpdated time.Time
}

// DistributionRepository persists per-user Beta posteriors and the set of
// processed feedback event IDs. Implementations must make UpsertRow safe
// for concurrent callers; the engine serializes writes per user but
// different users may flush in parallel.
type DistributionRepository interface {
	// LoadUser returns all persisted rows for a user. A user with no
	// rows returns an empty slice, not an error.
	LoadUser(ctx context.Context, userID string) ([]DistributionRow, error)

	// UpsertRow inserts or replaces one posterior row.
	UpsertRow(ctx context.Context, row DistributionRow) error

	// MarkEventProcessed records a feedback event ID as consumed.
	MarkEventProcessed(ctx context.Context, eventID string) error

	// IsEventProcessed reports whether a feedback event ID was already
	// consumed.
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}
