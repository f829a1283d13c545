package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calorie-chat/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore keeps sessions in Redis with a TTL, so conversations survive
// process restarts and can be shared across replicas
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// Close releases the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Create registers a new session for country and returns it
func (r *RedisStore) Create(ctx context.Context, country string) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Country:   country,
		History:   []Message{},
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the session for id or ErrNotFound
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Update stores the session state and refreshes its TTL
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session has no id")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}
