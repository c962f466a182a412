package run

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/objones25/latent/internal/monitor"
)

const runKeyPrefix = "run:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore persists runs as JSON values in Redis, for setups where
// several experiment workers share one tracker.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed run store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("Redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// SaveRun stores the run under run:<id>.
func (s *RedisStore) SaveRun(ctx context.Context, r *Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		monitor.RunsPersisted.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := s.client.Set(ctx, runKeyPrefix+r.ID, string(data), 0).Err(); err != nil {
		monitor.RunsPersisted.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("failed to store run: %w", err)
	}

	monitor.RunsPersisted.WithLabelValues("redis", "success").Inc()
	log.Debug().Str("run", r.ID).Msg("Run persisted to redis")
	return nil
}

// GetRun loads a run by id.
func (s *RedisStore) GetRun(ctx context.Context, id string) (*Run, error) {
	val, err := s.client.Get(ctx, runKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var r Run
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &r, nil
}

// ListRuns returns all stored run ids.
func (s *RedisStore) ListRuns(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, runKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key[len(runKeyPrefix):])
	}
	return ids, nil
}

// Close releases the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
