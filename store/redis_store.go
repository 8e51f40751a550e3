package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modehaus/stylesynth/models"
)

// RedisStore implements DistributionRepository using Redis.
// Posterior rows live in one hash per user, keyed
// "{prefix}:dist:{userId}" with fields "{category}|{value}"; processed
// event IDs live in the set "{prefix}:events".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreConfig configures the Redis repository.
type RedisStoreConfig struct {
	Prefix string // key prefix, default "stylesynth"
}

// NewRedisStore creates a repository backed by an existing Redis client.
func NewRedisStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisStore {
	cfg := RedisStoreConfig{Prefix: "stylesynth"}
	if len(config) > 0 && config[0].Prefix != "" {
		cfg = config[0]
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}
}

func (r *RedisStore) userKey(userID string) string {
	return fmt.Sprintf("%s:dist:%s", r.prefix, userID)
}

func (r *RedisStore) eventsKey() string {
	return fmt.Sprintf("%s:events", r.prefix)
}

func fieldKey(cat models.Category, value string) string {
	return fmt.Sprintf("%s|%s", cat, value)
}

// redisRow is the hash-field payload.
type redisRow struct {
	Alpha       float64   `json:"alpha"`
	Beta        float64   `json:"beta"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// LoadUser returns all persisted posterior rows for a user.
func (r *RedisStore) LoadUser(ctx context.Context, userID string) ([]DistributionRow, error) {
	fields, err := r.client.HGetAll(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load user distributions: %w", err)
	}

	out := make([]DistributionRow, 0, len(fields))
	for field, payload := range fields {
		cat, value, ok := splitFieldKey(field)
		if !ok {
			continue
		}
		var row redisRow
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			return nil, fmt.Errorf("decode distribution %s: %w", field, err)
		}
		out = append(out, DistributionRow{
			UserID:      userID,
			Category:    cat,
			Value:       value,
			Alpha:       row.Alpha,
			Beta:        row.Beta,
			LastUpdated: row.LastUpdated,
		})
	}
	return out, nil
}

// UpsertRow inserts or replaces one posterior row.
func (r *RedisStore) UpsertRow(ctx context.Context, row DistributionRow) error {
	payload, err := json.Marshal(redisRow{
		Alpha:       row.Alpha,
		Beta:        row.Beta,
		LastUpdated: row.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("encode distribution row: %w", err)
	}
	if err := r.client.HSet(ctx, r.userKey(row.UserID),
		fieldKey(row.Category, row.Value), payload).Err(); err != nil {
		return fmt.Errorf("upsert distribution row: %w", err)
	}
	return nil
}

// MarkEventProcessed records a feedback event ID as consumed.
func (r *RedisStore) MarkEventProcessed(ctx context.Context, eventID string) error {
	if err := r.client.SAdd(ctx, r.eventsKey(), eventID).Err(); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// IsEventProcessed reports whether a feedback event ID was already consumed.
func (r *RedisStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.eventsKey(), eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check processed event: %w", err)
	}
	return ok, nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func splitFieldKey(field string) (models.Category, string, bool) {
	for i := 0; i < len(field); i++ {
		if field[i] == '|' {
			return models.Category(field[:i]), field[i+1:], true
		}
	}
	return "", "", false
}
