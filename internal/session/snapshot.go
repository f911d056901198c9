package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotStore mirrors session state for crash recovery and audit. The
// registry stays authoritative while the session is live; writes here are
// best-effort and never block gameplay.
type SnapshotStore interface {
	Store(ctx context.Context, view View) error
	Load(ctx context.Context, sessionID string) (*View, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSnapshotStore is the write-through mirror backed by Redis.
type RedisSnapshotStore struct {
	redis  *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisSnapshotStore{
		redis:  client,
		logger: logger.With().Str("component", "session_snapshot").Logger(),
		ttl:    ttl,
	}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("session:snapshot:%s", NormalizeID(sessionID))
}

func (s *RedisSnapshotStore) Store(ctx context.Context, view View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.redis.Set(ctx, snapshotKey(view.ID), data, s.ttl).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context, sessionID string) (*View, error) {
	data, err := s.redis.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var view View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &view, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, snapshotKey(sessionID)).Err()
}
