package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/triqai/enrich-go/pkg/models"
)

var (
	// ErrCacheMiss indicates the transaction has no cached enrichment.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultTTL is how long cached enrichments stay valid. Merchant and
// category data drifts slowly, so a day is a safe horizon.
const DefaultTTL = 24 * time.Hour

// Manager handles enrichment result caching with a Redis backend.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a cache manager. A non-positive ttl falls back to
// DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get retrieves the cached result for a transaction.
// Returns ErrCacheMiss when nothing is stored.
func (m *Manager) Get(ctx context.Context, txn models.Transaction) (*models.EnrichmentResult, error) {
	data, err := m.redis.Get(ctx, Key(txn)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.Inc()
	return &entry.Result, nil
}

// Set stores an enrichment result under the transaction's key with the
// manager's TTL.
func (m *Manager) Set(ctx context.Context, txn models.Transaction, result *models.EnrichmentResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data, err := json.Marshal(Entry{
		Result:   *result,
		CachedAt: time.Now(),
	})
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, Key(txn), data, m.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes the cached result for a transaction.
func (m *Manager) Delete(ctx context.Context, txn models.Transaction) error {
	if err := m.redis.Del(ctx, Key(txn)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
