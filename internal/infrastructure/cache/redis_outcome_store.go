package cache

import (
	"context"
	"fmt"
	"time"

	appdispatch "github.com/quickcart/backend/internal/application/dispatch"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/redis/go-redis/v9"
)

// RedisOutcomeStore remembers decided claim outcomes in Redis so that client
// retries of the same submission get the recorded answer on any instance
type RedisOutcomeStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisOutcomeStore creates a new Redis-backed claim outcome store
func NewRedisOutcomeStore(cfg RedisConfig) (*RedisOutcomeStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisOutcomeStore{
		client:    client,
		keyPrefix: "dispatch:",
	}, nil
}

// NewRedisOutcomeStoreWithClient creates a store with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisOutcomeStoreWithClient(client *redis.Client, keyPrefix string) *RedisOutcomeStore {
	if keyPrefix == "" {
		keyPrefix = "dispatch:"
	}
	return &RedisOutcomeStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Remember stores a decided outcome under the claim key with a TTL. SETNX
// keeps the first decision: a concurrent duplicate write cannot change an
// already-recorded answer.
func (s *RedisOutcomeStore) Remember(ctx context.Context, key string, outcome dispatch.ClaimOutcome, ttl time.Duration) error {
	if _, err := s.client.SetNX(ctx, s.keyPrefix+key, outcome.String(), ttl).Result(); err != nil {
		return fmt.Errorf("failed to record claim outcome: %w", err)
	}
	return nil
}

// Lookup returns the recorded outcome for a claim key, if any
func (s *RedisOutcomeStore) Lookup(ctx context.Context, key string) (dispatch.ClaimOutcome, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up claim outcome: %w", err)
	}

	outcome := dispatch.ClaimOutcome(value)
	if !outcome.IsValid() {
		return "", false, fmt.Errorf("corrupt claim outcome record: %q", value)
	}
	return outcome, true, nil
}

// Close closes the Redis client
func (s *RedisOutcomeStore) Close() error {
	return s.client.Close()
}

var _ appdispatch.ClaimOutcomeStore = (*RedisOutcomeStore)(nil)
