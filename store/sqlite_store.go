package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/modehaus/stylesynth/models"
)

// SQLiteStore implements DistributionRepository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed repository. Pass ":memory:" for
// an ephemeral database.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "distributions.db")

		// Ensure directory exists
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// initSchema creates the database tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attribute_distributions (
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		value TEXT NOT NULL,
		alpha REAL NOT NULL CHECK (alpha >= 1),
		beta REAL NOT NULL CHECK (beta >= 1),
		last_updated TEXT NOT NULL,
		PRIMARY KEY (user_id, category, value)
	);

	CREATE TABLE IF NOT EXISTS processed_events (
		event_id TEXT PRIMARY KEY,
		processed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_distributions_user
		ON attribute_distributions(user_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// LoadUser returns all persisted posterior rows for a user.
func (s *SQLiteStore) LoadUser(ctx context.Context, userID string) ([]DistributionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, value, alpha, beta, last_updated
		 FROM attribute_distributions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query distributions: %w", err)
	}
	defer rows.Close()

	var out []DistributionRow
	for rows.Next() {
		var (
			row     DistributionRow
			cat     string
			updated string
		)
		row.UserID = userID
		if err := rows.Scan(&cat, &row.Value, &row.Alpha, &row.Beta, &updated); err != nil {
			return nil, fmt.Errorf("scan distribution row: %w", err)
		}
		row.Category = models.Category(cat)
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			row.LastUpdated = t
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distribution rows: %w", err)
	}
	return out, nil
}

// UpsertRow inserts or replaces one posterior row.
func (s *SQLiteStore) UpsertRow(ctx context.Context, row DistributionRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attribute_distributions (user_id, category, value, alpha, beta, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category, value) DO UPDATE SET
			alpha = excluded.alpha,
			beta = excluded.beta,
			last_updated = excluded.last_updated`,
		row.UserID, string(row.Category), row.Value, row.Alpha, row.Beta,
		row.LastUpdated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert distribution row: %w", err)
	}
	return nil
}

// MarkEventProcessed records a feedback event ID as consumed.
func (s *SQLiteStore) MarkEventProcessed(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_events (event_id, processed_at) VALUES (?, ?)`,
		eventID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// IsEventProcessed reports whether a feedback event ID was already consumed.
func (s *SQLiteStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_events WHERE event_id = ?`, eventID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check processed event: %w", err)
	}
	return n > 0, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
