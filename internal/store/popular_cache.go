package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"filmrate/internal/domain"
)

// ErrCacheMiss is returned when the requested entry is not cached.
var ErrCacheMiss = errors.New("popular films not cached")

const popularKeyPrefix = "films:popular:"

// PopularCache keeps the most-popular-films ranking in Redis so the top-N
// aggregation query is not re-run on every request. Rankings are stored as
// JSON film lists keyed by count, with a TTL as a backstop; any like or film
// mutation invalidates all entries eagerly.
type PopularCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewPopularCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *PopularCache {
	return &PopularCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached ranking for the given count, or ErrCacheMiss.
func (c *PopularCache) Get(ctx context.Context, count int) ([]domain.Film, error) {
	data, err := c.client.Get(ctx, popularKey(count)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read popular films cache: %w", err)
	}
	var films []domain.Film
	if err := json.Unmarshal(data, &films); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.logger.WarnContext(ctx, "Dropping corrupt popular films cache entry", slog.String("error", err.Error()))
		c.client.Del(ctx, popularKey(count))
		return nil, ErrCacheMiss
	}
	return films, nil
}

// Set stores the ranking for the given count.
func (c *PopularCache) Set(ctx context.Context, count int, films []domain.Film) error {
	data, err := json.Marshal(films)
	if err != nil {
		return fmt.Errorf("failed to marshal popular films: %w", err)
	}
	if err := c.client.Set(ctx, popularKey(count), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write popular films cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached ranking. Called after any mutation that can
// change like counts or the film set.
func (c *PopularCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, popularKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to scan popular films cache keys", slog.String("error", err.Error()))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to invalidate popular films cache", slog.String("error", err.Error()))
	}
}

func popularKey(count int) string {
	return fmt.Sprintf("%s%d", popularKeyPrefix, count)
}
